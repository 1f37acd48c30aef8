/*
   SIODrive - Atari SIO floppy drive emulator
   Copyright (c) 2022, Konrad Weberling

   This file is part of SIODrive.

   SIODrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   SIODrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with SIODrive. If not, see <http://www.gnu.org/licenses/>.
*/

package run

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

/*
	The package initializer sets up logging based on logrus. The following
	environment variables can be used to configure logging:

		LOG_FORMAT		set to `json` for JSON logging
		LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
		LOG_METHODS		set to non-empty for including methods in log
		LOG_LEVEL		`panic`, `fatal`, `error`, `warn`, `info`, `debug`, `trace`
*/
func init() {

	log.SetOutput(os.Stdout)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else if strings.ToLower(os.Getenv("LOG_FORCE_COLORS")) != "" {
		log.SetFormatter(&log.TextFormatter{
			ForceColors: true,
		})
	}

	if strings.ToLower(os.Getenv("LOG_METHODS")) != "" {
		log.SetReportCaller(true)
	}

	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			log.Errorf("invalid log level: '%s'; valid levels are: panic, "+
				"fatal, error, warn, info, debug, trace", level)
		} else {
			log.SetLevel(l)
		}
	}
}

//
var (
	UnderTest bool
)

// DieOnError exits the running process if e is not nil.
func DieOnError(e error) {
	if e != nil {
		Die("%v", e)
	}
}

// Die exits the running process, printing the given message.
func Die(msg string, params ...interface{}) {
	err := fmt.Sprintf(msg, params...)
	fmt.Println(err)
	if UnderTest {
		panic(err)
	}
	os.Exit(1)
}

/*
	NewCommand creates a base command instance, wrapping a new Cobra
	command. The exec function is invoked when the command's Execute
	method is called.
*/
func NewCommand(use, short, long, helpEpilogue string,
	exec func() error) *Command {

	ret := Command{
		cmd: &cobra.Command{
			Use:   use,
			Short: short,
			Long:  long,
			RunE: func(*cobra.Command, []string) error {
				return exec()
			},
			SilenceErrors:         true,
			SilenceUsage:          true,
			DisableFlagsInUseLine: true,
		},
		settings:     map[string]*setting{},
		helpEpilogue: helpEpilogue,
	}
	ret.helpFunc = ret.cmd.HelpFunc()
	ret.cmd.SetHelpFunc(ret.help)
	return &ret
}

/*
	Command wraps Cobra & Viper so that a setting can come from a flag or
	an environment variable, with a meaningful message when a required
	setting is missing from both.
*/
type Command struct {
	//
	cmd *cobra.Command
	//
	settings map[string]*setting
	//
	Args []string
	//
	helpEpilogue string
	helpFunc     func(*cobra.Command, []string)
}

//
func (c *Command) help(cmd *cobra.Command, args []string) {
	if c.helpFunc != nil {
		c.helpFunc(cmd, args)
	}
	if c.helpEpilogue != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "\nNotes:\n\n"+c.helpEpilogue)
	} else {
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

/*
	Execute invokes the exec function that was set on this command when
	it was created. If args is of non-zero length, it overrides os.Args.
*/
func (c *Command) Execute(args []string) error {
	if len(args) > 0 {
		c.cmd.SetArgs(args)
	}
	return c.cmd.Execute()
}

/*
	AddStringSetting adds a string setting, bound to target. flag is the
	long command line flag, short its one letter version, env the name
	of an environment variable that may carry the setting, or empty.
*/
func (c *Command) AddStringSetting(target *string, flag, short, env, def,
	help string, required bool) {
	c.flagSet().StringVarP(target, flag, short, def, helpText(help, env))
	c.bind(&setting{flag: flag, env: env, required: required,
		get: func() (interface{}, bool) {
			v := viper.GetString(flag)
			*target = v
			return v, v != ""
		}})
}

//
func (c *Command) AddIntSetting(target *int, flag, short, env string, def int,
	help string, required bool) {
	c.flagSet().IntVarP(target, flag, short, def, helpText(help, env))
	c.bind(&setting{flag: flag, env: env, required: required,
		get: func() (interface{}, bool) {
			v := viper.GetInt(flag)
			*target = v
			return v, viper.IsSet(flag)
		}})
}

//
func (c *Command) AddBoolSetting(target *bool, flag, short, env string,
	help string) {
	c.flagSet().BoolVarP(target, flag, short, false, helpText(help, env))
	c.bind(&setting{flag: flag, env: env,
		get: func() (interface{}, bool) {
			v := viper.GetBool(flag)
			*target = v
			return v, true
		}})
}

//
func (c *Command) bind(s *setting) {
	c.settings[s.flag] = s
	viper.BindPFlag(s.flag, c.flagSet().Lookup(s.flag))
	if s.env != "" {
		viper.BindEnv(s.flag, s.env)
	}
}

/*
	ParseSettings resolves all settings that were added to this command.
	Afterwards, setting values are available in the variables to which
	they were bound. Call this first in the command's exec function.
*/
func (c *Command) ParseSettings() {
	for _, s := range c.settings {
		_, set := s.get()
		if s.required && !set {
			msg := fmt.Sprintf(
				"you need to specify the --%s command line flag", s.flag)
			if s.env != "" {
				msg = fmt.Sprintf(
					"%s or the %s environment variable", msg, s.env)
			}
			Die(msg)
		}
	}
	c.Args = c.cmd.Flags().Args()
}

//
func (c *Command) flagSet() *pflag.FlagSet {
	return c.cmd.Flags()
}

//
type setting struct {
	flag     string
	env      string
	required bool
	get      func() (interface{}, bool)
}

//
func helpText(help, env string) string {
	if env != "" {
		return fmt.Sprintf("%s (%s)", help, env)
	}
	return help
}
