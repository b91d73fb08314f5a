package pipeline

import (
	"context"

	"github.com/beam-cloud/emailreader/pkg/common"
	"github.com/beam-cloud/emailreader/pkg/mail"
	"github.com/beam-cloud/emailreader/pkg/oauth"
	"github.com/beam-cloud/emailreader/pkg/summarize"
	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/rs/zerolog/log"
)

// DefaultDeps wires the Google exchanger, the Gmail client, the system browser
// and, when a model key is configured, the summarizer. Missing OAuth
// credentials are fatal.
func DefaultDeps(cfg types.AppConfig) (Deps, error) {
	creds, err := cfg.Credentials()
	if err != nil {
		return Deps{}, err
	}

	verifier, err := oauth.NewIDTokenVerifier(context.Background())
	if err != nil {
		return Deps{}, err
	}
	google := oauth.NewGoogleClient(creds, verifier)

	var model summarize.Model
	if m := summarize.NewOpenAIModel(cfg.Model); m != nil {
		model = m
	} else {
		log.Info().Msg("no model key configured, summaries disabled")
	}

	return Deps{
		Exchanger: google,
		NewMailClient: func(ctx context.Context, tokens *types.TokenSet) (mail.Client, error) {
			// The token source outlives ctx; it must not be bound to the attempt.
			return mail.NewGmailClient(ctx, google.TokenSource(context.Background(), tokens))
		},
		OpenBrowser: common.OpenBrowser,
		Summarizer:  summarize.NewPipeline(model, cfg.Model.Timeout),
	}, nil
}
