package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the optional config.yaml file. It
// carries data that is easier to maintain in a file than in env vars, notably
// seed answers preloaded into the learned-answer cache at startup.
type YAMLConfig struct {
	SeedAnswers []SeedAnswer `yaml:"seed_answers"`
}

// SeedAnswer is a question/answer pair preloaded into the cache.
type SeedAnswer struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// LoadYAMLConfig loads the YAML configuration file. Path is determined by the
// CONFIG_FILE env var, defaulting to "config.yaml". Returns nil without error
// if the file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SeedAnswerPairs returns the seed answers as a question -> answer map,
// skipping entries missing either field.
func (c *YAMLConfig) SeedAnswerPairs() map[string]string {
	if c == nil {
		return nil
	}
	pairs := make(map[string]string, len(c.SeedAnswers))
	for _, sa := range c.SeedAnswers {
		if sa.Question == "" || sa.Answer == "" {
			continue
		}
		pairs[sa.Question] = sa.Answer
	}
	return pairs
}
