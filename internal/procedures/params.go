package procedures

import (
	"math/rand/v2"

	"github.com/mitchellh/mapstructure"

	"github.com/manav03panchal/stepwise/internal/errors"
)

// Params is an untyped parameter bag as it arrives from flags or JSON.
type Params map[string]any

// Seeded carries the seed for randomly generated inputs. Zero picks a
// random seed.
type Seeded struct {
	Seed uint64 `mapstructure:"seed"`
}

func (s Seeded) rng() *rand.Rand {
	seed := s.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// decode fills out from raw. Strings are weakly converted so that flag
// values like "5,3,8" decode into []int. Unknown keys are rejected.
func decode(raw Params, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return errors.Wrap(err, "build params decoder")
	}
	if err := dec.Decode(map[string]any(raw)); err != nil {
		return errors.NewUserError("Invalid parameters: "+err.Error(),
			errors.GetSuggestion(errors.ErrInvalidParams)).
			WithCause(errors.ErrInvalidParams)
	}
	return nil
}
