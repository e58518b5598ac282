/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config is a slim viper-backed options loader for stdsc servers
// and clients: one Options struct, one Load entry point, env + file +
// defaults, no component orchestration.
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/nabbar/stdsc/duration"
	liberr "github.com/nabbar/stdsc/errors"
	logcfg "github.com/nabbar/stdsc/logger/config"
	spfvpr "github.com/spf13/viper"
)

// envPrefix is the only prefix config.Load binds environment variables
// under, e.g. STDSC_SERVERPORT, STDSC_LOGLEVEL. Nested log.* keys are only
// overridden by their environment variable when the config file sets them.
const envPrefix = "STDSC"

// Options holds every value the server and client CLIs need to start.
// LogLevel is parsed with logger/level.Parse; Log is merged onto whatever
// level-dependent defaults a caller applies via logger.Logger.SetOptions.
type Options struct {
	ServerPort    int `mapstructure:"serverPort"`
	ListenBacklog int `mapstructure:"listenBacklog"`

	ClientConnectRetryInterval duration.Duration `mapstructure:"clientConnectRetryInterval"`
	ClientConnectTimeout       duration.Duration `mapstructure:"clientConnectTimeout"`

	LogLevel string         `mapstructure:"logLevel"`
	Log      logcfg.Options `mapstructure:"log"`
}

// Default returns the Options a fresh stdsc process starts from absent any
// env var, flag, or config file.
func Default() Options {
	return Options{
		ServerPort:                 7766,
		ListenBacklog:              128,
		ClientConnectRetryInterval: duration.Seconds(1),
		ClientConnectTimeout:       duration.Seconds(30),
		LogLevel:                   "info",
	}
}

// Load builds an Options from defaults, then an optional config file (the
// first of path that viper can locate and parse), then STDSC_-prefixed
// environment variables, each layer overriding the previous. Load is the
// only place viper.New is called.
func Load(path ...string) (Options, liberr.Error) {
	opt := Default()

	v := spfvpr.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range []string{"serverPort", "listenBacklog", "clientConnectRetryInterval", "clientConnectTimeout", "logLevel"} {
		_ = v.BindEnv(k)
	}

	for _, p := range path {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err == nil {
			break
		}
	}

	dec := func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			c.DecodeHook,
		)
	}

	if err := v.Unmarshal(&opt, dec); err != nil {
		return opt, liberr.NewInvalidParam("cannot parse stdsc configuration", err)
	}

	return opt, nil
}
