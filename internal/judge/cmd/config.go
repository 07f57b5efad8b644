package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gomori.dev/x/judge/internal/util"
	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

// options is everything the tournament command can be configured with.
// Values are taken from flags, JUDGE_* environment variables, and the
// config file, in that order of precedence.
type options struct {
	tournament.Config `mapstructure:",squash"`

	RecordGamesTo string `mapstructure:"record-games-to"`
	Record        bool   `mapstructure:"record"`
	Snapshot      bool   `mapstructure:"snapshot"`
	Progress      bool   `mapstructure:"progress"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
}

func loadOptions(cmd *cobra.Command, args []string) (options, error) {
	var opts options

	v := viper.New()
	v.SetEnvPrefix("JUDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	if err := v.BindPFlags(flags); err != nil {
		return opts, err
	}

	for key, flag := range map[string]string{
		"kafka.brokers": "kafka-brokers",
		"kafka.topic":   "kafka-topic",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return opts, err
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return opts, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("decode config: %w", err)
	}

	for _, arg := range args {
		players, err := loadPlayers(arg)
		if err != nil {
			return opts, err
		}

		opts.Players = append(opts.Players, players...)
	}

	return opts, nil
}

// loadPlayers loads a player file, or every player file in a directory in
// natural order.
func loadPlayers(path string) ([]match.BotConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		player, err := loadPlayer(path)
		return []match.BotConfig{player}, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
			if !entry.IsDir() {
				files = append(files, entry.Name())
			}
		}
	}

	slices.SortFunc(files, util.NaturalCompare)

	var players []match.BotConfig
	for _, file := range files {
		player, err := loadPlayer(filepath.Join(path, file))
		if err != nil {
			return nil, err
		}

		players = append(players, player)
	}

	return players, nil
}

// loadPlayer reads a JSON or YAML player file. Besides the fields of a
// match.BotConfig, files may use nick for the name and a list for cmd,
// whose first element is the executable and whose other elements are
// passed to it unchanged.
func loadPlayer(path string) (match.BotConfig, error) {
	var config match.BotConfig

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		return config, fmt.Errorf("load player %s: %w", path, err)
	}

	var command []string
	switch cmd := v.Get("cmd").(type) {
	case string:
		command = strings.Fields(cmd)
	default:
		command = v.GetStringSlice("cmd")
	}

	if len(command) == 0 {
		return config, fmt.Errorf("load player %s: cmd field cannot be empty", path)
	}

	config.Cmd = command[0]
	config.Args = append(command[1:len(command):len(command)], v.GetStringSlice("args")...)
	if len(config.Args) == 0 {
		config.Args = nil
	}

	config.Arg = v.GetString("arg")
	config.Dir = v.GetString("dir")
	config.Stderr = v.GetString("stderr")

	config.Name = v.GetString("name")
	if config.Name == "" {
		config.Name = v.GetString("nick")
	}

	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return config, nil
}
