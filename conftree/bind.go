package conftree

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Bind decodes the section into target, which must be a non-nil pointer to a
// struct or map. Keys match field names case-insensitively or through
// `mapstructure` tags; scalars are weakly typed, and duration strings such as
// "30s" decode into time.Duration fields.
func (s *Section) Bind(target any) error {
	if target == nil {
		return ErrBindTargetNil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	if err := decoder.Decode(s.Map()); err != nil {
		return fmt.Errorf("%w: %w", ErrBindFailed, err)
	}
	return nil
}
