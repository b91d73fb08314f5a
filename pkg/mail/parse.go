package mail

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/gmail/v1"
)

// Part is one node of a message payload tree: a Leaf carrying encoded content
// or a Container of child parts.
type Part interface {
	mimeType() string
}

// Leaf is a payload node with base64url-encoded data
type Leaf struct {
	MimeType string
	Data     string
}

// Container is a multipart payload node
type Container struct {
	MimeType string
	Children []Part
}

func (l Leaf) mimeType() string      { return l.MimeType }
func (c Container) mimeType() string { return c.MimeType }

// PartFromGmail converts a gmail payload into the Part tree
func PartFromGmail(p *gmail.MessagePart) Part {
	if p == nil {
		return nil
	}
	if len(p.Parts) > 0 {
		children := make([]Part, 0, len(p.Parts))
		for _, child := range p.Parts {
			if part := PartFromGmail(child); part != nil {
				children = append(children, part)
			}
		}
		return Container{MimeType: p.MimeType, Children: children}
	}

	leaf := Leaf{MimeType: p.MimeType}
	if p.Body != nil {
		leaf.Data = p.Body.Data
	}
	return leaf
}

// ParseMessage extracts structured data from a full gmail message
func ParseMessage(msg *gmail.Message) *types.EmailMessage {
	email := &types.EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}

	var root Part
	if msg.Payload != nil {
		headers := msg.Payload.Headers
		email.Subject = Header(headers, "Subject")
		email.From = Header(headers, "From")
		email.To = Header(headers, "To")
		email.Date = Header(headers, "Date")
		root = PartFromGmail(msg.Payload)
	}
	if email.Subject == "" {
		email.Subject = types.NoSubject
	}

	email.Body = ExtractBody(root, msg.Snippet)
	return email
}

// Header returns the first header whose name matches case-insensitively
func Header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ExtractBody returns the best text in the tree: the first text/plain leaf,
// else the first text/html leaf as plain text, else the first other leaf with
// data, searched depth-first. Falls back to snippet.
func ExtractBody(root Part, snippet string) string {
	if root == nil {
		return snippet
	}

	extractors := []func(Leaf) string{
		plainText,
		htmlText,
		anyText,
	}
	for _, extract := range extractors {
		if text := firstMatch(root, extract); text != "" {
			return text
		}
	}
	return snippet
}

// firstMatch walks the tree depth-first and returns the first non-empty result
func firstMatch(p Part, extract func(Leaf) string) string {
	switch node := p.(type) {
	case Leaf:
		return extract(node)
	case Container:
		for _, child := range node.Children {
			if text := firstMatch(child, extract); text != "" {
				return text
			}
		}
	}
	return ""
}

func plainText(l Leaf) string {
	if baseMimeType(l.MimeType) != "text/plain" {
		return ""
	}
	return decodeLeaf(l)
}

func htmlText(l Leaf) string {
	if baseMimeType(l.MimeType) != "text/html" {
		return ""
	}
	return HTMLToText(decodeLeaf(l))
}

func anyText(l Leaf) string {
	switch baseMimeType(l.MimeType) {
	case "text/plain", "text/html":
		return ""
	}
	return decodeLeaf(l)
}

func decodeLeaf(l Leaf) string {
	if l.Data == "" {
		return ""
	}
	data, err := DecodeBase64URL(l.Data)
	if err != nil {
		log.Debug().Err(err).Str("mime_type", l.MimeType).Msg("skipping undecodable part")
		return ""
	}
	return strings.TrimSpace(string(data))
}

func baseMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

var errBadBase64Length = errors.New("invalid base64url length")

var urlAlphabet = strings.NewReplacer("-", "+", "_", "/")

// DecodeBase64URL decodes URL-safe base64, restoring any missing padding
func DecodeBase64URL(s string) ([]byte, error) {
	s = urlAlphabet.Replace(strings.TrimRight(strings.TrimSpace(s), "="))
	switch len(s) % 4 {
	case 1:
		return nil, errBadBase64Length
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.StdEncoding.DecodeString(s)
}
