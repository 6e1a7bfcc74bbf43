package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	ModeratorKeySalt string
	AllowedOrigins   []string // CORS allowlist; empty reflects any origin (dev)

	// Curation policy knobs
	Quorum              int // net votes required to resolve a suggestion
	AuthorApprovePoints int // author reward on approval
	AuthorRejectPoints  int // author penalty on rejection (subtracted)
	VoterMatchPoints    int // voter reward for matching the outcome
	LeaderboardSize     int // rows materialized for the visible board
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("curia", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ModeratorKeySalt, "moderator-salt", "", "Moderator key salt (prefer env)")

	var origins string
	fs.StringVar(&origins, "cors-origins", "", "Comma-separated CORS origin allowlist")

	// Policy (rarely changed; env is the usual route)
	fs.IntVar(&cfg.Quorum, "quorum", 0, "Net votes required to resolve a suggestion")
	fs.IntVar(&cfg.LeaderboardSize, "board-size", 0, "Leaderboard rows shown")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	cfg.AllowedOrigins = splitOrigins(origins)

	// Secrets - MUST be provided
	if cfg.ModeratorKeySalt == "" {
		cfg.ModeratorKeySalt = os.Getenv("MODERATOR_KEY_SALT")
	}
	if cfg.ModeratorKeySalt == "" {
		return Config{}, errors.New("MODERATOR_KEY_SALT required")
	}

	// Policy defaults
	var err error
	if cfg.Quorum, err = intFromEnv(cfg.Quorum, "QUORUM", 3); err != nil {
		return Config{}, err
	}
	if cfg.Quorum < 1 {
		return Config{}, errors.New("quorum must be at least 1")
	}
	if cfg.AuthorApprovePoints, err = intFromEnv(0, "AUTHOR_APPROVE_POINTS", 5); err != nil {
		return Config{}, err
	}
	if cfg.AuthorRejectPoints, err = intFromEnv(0, "AUTHOR_REJECT_POINTS", 1); err != nil {
		return Config{}, err
	}
	if cfg.VoterMatchPoints, err = intFromEnv(0, "VOTER_MATCH_POINTS", 1); err != nil {
		return Config{}, err
	}
	if cfg.LeaderboardSize, err = intFromEnv(cfg.LeaderboardSize, "LEADERBOARD_SIZE", 10); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// splitOrigins turns a comma-separated origin list into a slice, dropping
// blanks. An empty input yields nil (allow any origin).
func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// intFromEnv keeps a flag-provided value, otherwise reads the named env
// variable, otherwise applies the default.
func intFromEnv(current int, name string, def int) (int, error) {
	if current != 0 {
		return current, nil
	}
	if s := os.Getenv(name); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.New("invalid " + name + " env variable")
		}
		return v, nil
	}
	return def, nil
}
