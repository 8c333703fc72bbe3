// Package tconfig loads host-facing checker configuration (spec.md §6:
// the single Config option, per-rule severity overrides) the way
// dev.helix.code/internal/config loads its server configuration: viper
// layered over defaults, a config file, and environment variables. The
// engine itself only ever sees the plain *checker.Config this package
// produces; viper stays at the host-facing edge.
package tconfig

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/thalo-lang/thalo/internal/checker"
)

// EnvPrefix is the environment variable prefix severity overrides bind
// under, e.g. THALO_RULES_UNKNOWN_FIELD=off.
const EnvPrefix = "THALO"

// Source describes where to load rule severities from. A zero Source
// loads no file, honoring only environment variables and defaults.
type Source struct {
	// ConfigFile is an explicit path to a config file. When empty,
	// Load searches ConfigPaths for a file named ConfigName.
	ConfigFile string
	// ConfigPaths are directories to search when ConfigFile is empty.
	ConfigPaths []string
	// ConfigName is the base file name to search for (without
	// extension), defaulting to "thalo" when empty.
	ConfigName string
}

// Load resolves effective rule severities from defaults, an optional
// config file, and THALO_RULES_* environment variables, in that
// precedence order (later sources win), mirroring
// dev.helix.code/internal/config.Load's layering.
func Load(src Source, rules []*checker.Rule) (*checker.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for _, r := range rules {
		v.SetDefault(ruleKey(r.Code), string(r.DefaultSeverity))
	}

	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
	} else {
		v.SetConfigName(configNameOr(src.ConfigName))
		v.SetConfigType("yaml")
		for _, p := range src.ConfigPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "tconfig: reading config file")
		}
	}

	cfg := &checker.Config{Rules: make(map[string]checker.Severity, len(rules))}
	for _, r := range rules {
		raw := v.GetString(ruleKey(r.Code))
		sev := checker.Severity(strings.ToLower(strings.TrimSpace(raw)))
		if !validSeverity(sev) {
			return nil, errors.Errorf("tconfig: rule %s: invalid severity %q", r.Code, raw)
		}
		cfg.Rules[r.Code] = sev
	}
	return cfg, nil
}

func ruleKey(code string) string {
	return "rules." + strings.ReplaceAll(code, "-", "_")
}

func configNameOr(name string) string {
	if name == "" {
		return "thalo"
	}
	return name
}

func validSeverity(s checker.Severity) bool {
	switch s {
	case checker.SeverityError, checker.SeverityWarning, checker.SeverityInfo, checker.SeverityOff:
		return true
	default:
		return false
	}
}
