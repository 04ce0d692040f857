// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// config mirrors the global flags. Flags given on the command line win.
type config struct {
	DataDir           string `yaml:"data-dir"`
	Cache             int    `yaml:"cache"`
	Verbosity         int    `yaml:"verbosity"`
	VerbosityStaking  int    `yaml:"verbosity-staking"`
	JSONLogs          bool   `yaml:"json-logs"`
	NTPServer         string `yaml:"ntp-server"`
	TimestampOverride bool   `yaml:"allow-timestamp-override"`
	EnableMetrics     bool   `yaml:"enable-metrics"`
}

func readConfigFile(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

// loadConfig merges the config file, if any, with the global flags.
func loadConfig(ctx *cli.Context) (*config, error) {
	cfg := &config{
		DataDir:          ctx.GlobalString(dataDirFlag.Name),
		Cache:            ctx.GlobalInt(cacheFlag.Name),
		Verbosity:        ctx.GlobalInt(verbosityFlag.Name),
		VerbosityStaking: ctx.GlobalInt(verbosityStakingFlag.Name),
	}
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		file, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(file, ctx.GlobalIsSet)
	}

	if ctx.GlobalIsSet(jsonLogsFlag.Name) {
		cfg.JSONLogs = ctx.GlobalBool(jsonLogsFlag.Name)
	}
	if ctx.GlobalIsSet(ntpServerFlag.Name) {
		cfg.NTPServer = ctx.GlobalString(ntpServerFlag.Name)
	}
	if ctx.GlobalIsSet(timestampOverrideFlag.Name) {
		cfg.TimestampOverride = ctx.GlobalBool(timestampOverrideFlag.Name)
	}
	if ctx.GlobalIsSet(enableMetricsFlag.Name) {
		cfg.EnableMetrics = ctx.GlobalBool(enableMetricsFlag.Name)
	}
	return cfg, nil
}

// merge takes values from file for every flag not set explicitly.
func (c *config) merge(file *config, isSet func(name string) bool) {
	if !isSet(dataDirFlag.Name) && file.DataDir != "" {
		c.DataDir = file.DataDir
	}
	if !isSet(cacheFlag.Name) && file.Cache > 0 {
		c.Cache = file.Cache
	}
	if !isSet(verbosityFlag.Name) && file.Verbosity > 0 {
		c.Verbosity = file.Verbosity
	}
	if !isSet(verbosityStakingFlag.Name) && file.VerbosityStaking > 0 {
		c.VerbosityStaking = file.VerbosityStaking
	}
	c.JSONLogs = file.JSONLogs
	c.NTPServer = file.NTPServer
	c.TimestampOverride = file.TimestampOverride
	c.EnableMetrics = file.EnableMetrics
}
