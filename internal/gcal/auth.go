package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/ymichaeli/fixture-sync/internal/config"
	"github.com/ymichaeli/fixture-sync/internal/crypto"
	"github.com/ymichaeli/fixture-sync/internal/logger"
)

// PassphraseEnv names the environment variable that, when set, encrypts the
// cached token file at rest.
const PassphraseEnv = "FIXTURESYNC_PASSPHRASE"

// tokenSource builds an auto-refreshing token source from the OAuth client
// credentials and the cached token. When no usable token exists, the
// interactive consent flow runs once and the result is cached.
func tokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading OAuth credentials %s: %w", cfg.CredentialsFile, err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parsing OAuth credentials: %w", err)
	}

	enc := crypto.NewEncryptor(os.Getenv(PassphraseEnv))

	tok, err := loadToken(cfg.TokenFile, enc)
	if err != nil {
		logger.Info("No cached token, starting consent flow", logger.Fields{
			"token_file": cfg.TokenFile,
		})
		tok, err = tokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, tok, enc); err != nil {
			logger.Warn("Could not cache token, consent will be required again", logger.Fields{
				"token_file": cfg.TokenFile,
			})
		}
	}

	return oauthCfg.TokenSource(ctx, tok), nil
}

// tokenFromWeb runs the manual consent flow: print the auth URL, read the
// authorization code back, exchange it for a token.
func tokenFromWeb(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, authorize the app, then paste the code here:\n%v\n\nCode: ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

func loadToken(path string, enc *crypto.Encryptor) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	plain, err := enc.Open(data)
	if err != nil {
		return nil, fmt.Errorf("decrypting token: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(plain, tok); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token, enc *crypto.Encryptor) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	sealed, err := enc.Seal(data)
	if err != nil {
		return fmt.Errorf("encrypting token: %w", err)
	}

	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}
