package config

import "github.com/openkcm/common-sdk/pkg/commoncfg"

const maskedValue = "********"

// Masked returns a copy of cfg with embedded secret values replaced, fit for
// printing. References to files or environment variables are kept.
func Masked(cfg Config) Config {
	cfg.Commerce.AccessToken = mask(cfg.Commerce.AccessToken)
	cfg.Content.AccessToken = mask(cfg.Content.AccessToken)
	cfg.Search.APIKey = mask(cfg.Search.APIKey)
	cfg.Database.Password = mask(cfg.Database.Password)
	cfg.ValKey.Password = mask(cfg.ValKey.Password)

	return cfg
}

func mask(ref commoncfg.SourceRef) commoncfg.SourceRef {
	if ref.Source == "embedded" && ref.Value != "" {
		ref.Value = maskedValue
	}
	return ref
}
