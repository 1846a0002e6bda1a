package gemini

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoModels is returned when the credential has no usable models.
var ErrNoModels = eris.New("gemini: no models available for credential")

// ResolveModel determines which concrete model the credential may use.
// Models whose identifier signals the fast tier are preferred; otherwise the
// first generation-capable model is taken. The binding between credential
// and model identifiers is not fixed, so resolution runs fresh at the start
// of every run rather than being cached.
func ResolveModel(ctx context.Context, c Client) (string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return "", eris.Wrap(err, "gemini: list models")
	}

	var usable []string
	for _, m := range models {
		if m.SupportsGeneration() {
			usable = append(usable, m.Name)
		}
	}
	if len(usable) == 0 {
		return "", ErrNoModels
	}

	chosen := usable[0]
	for _, name := range usable {
		if strings.Contains(strings.ToLower(name), "flash") {
			chosen = name
			break
		}
	}

	zap.L().Info("gemini: resolved model",
		zap.String("model", chosen),
		zap.Int("usable", len(usable)),
	)
	return chosen, nil
}
