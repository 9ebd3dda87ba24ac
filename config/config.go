// Package config resolves the settings of the controller from flags, the
// environment, a .env file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/keithnet/control"
	"github.com/sarchlab/keithnet/logging"
	"github.com/sarchlab/keithnet/nn"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/go-playground/validator.v9"
)

// ErrConfigMissing is returned when a required key has no value.
var ErrConfigMissing = errors.New("required configuration missing")

// EnvPrefix prefixes the environment variables read by Load. The key
// "queue-size" is read from KEITHNET_QUEUE_SIZE.
const EnvPrefix = "KEITHNET"

// The configuration keys.
const (
	KeyNetFile     = "netfile"
	KeyRate        = "rate"
	KeyHormone     = "hormone"
	KeyActivation  = "activation"
	KeyQueueSize   = "queue-size"
	KeySonarTopic  = "sonar-topic"
	KeyLeftTopic   = "left-topic"
	KeyRightTopic  = "right-topic"
	KeyRecord      = "record"
	KeyMonitorPort = "monitor-port"
	KeyOpenBrowser = "open-browser"
	KeyLogLevel    = "log-level"
)

// Config holds every setting of the run command.
type Config struct {
	// NetFile is the path of the genome to load.
	NetFile string `mapstructure:"netfile" validate:"required"`

	// Rate is the tick frequency in Hz.
	Rate float64 `mapstructure:"rate" validate:"gt=0"`

	// Hormone is the modulation level applied before every step.
	Hormone float64 `mapstructure:"hormone"`

	// Activation names the transfer function of the network units.
	Activation string `mapstructure:"activation" validate:"required,activation"`

	// QueueSize bounds the sonar messages waiting between two ticks.
	QueueSize int `mapstructure:"queue-size" validate:"gt=0"`

	SonarTopic string `mapstructure:"sonar-topic" validate:"required"`
	LeftTopic  string `mapstructure:"left-topic" validate:"required"`
	RightTopic string `mapstructure:"right-topic" validate:"required"`

	// Record is the SQLite file ticks are recorded into. Empty disables
	// recording.
	Record string `mapstructure:"record"`

	// MonitorPort enables the monitor when positive.
	MonitorPort int  `mapstructure:"monitor-port" validate:"min=0,max=65535"`
	OpenBrowser bool `mapstructure:"open-browser"`

	LogLevel string `mapstructure:"log-level" validate:"loglevel"`
}

// Freq returns the tick frequency.
func (c *Config) Freq() control.Freq {
	return control.Freq(c.Rate)
}

// Topics returns the topic names.
func (c *Config) Topics() control.Topics {
	return control.Topics{
		Sonar: c.SonarTopic,
		Left:  c.LeftTopic,
		Right: c.RightTopic,
	}
}

// Default values
func setDefaults(v *viper.Viper) {
	topics := control.DefaultTopics()

	keys := map[string]any{
		KeyNetFile:     "",
		KeyRate:        10.0,
		KeyHormone:     0.0,
		KeyActivation:  "sigmoid",
		KeyQueueSize:   100,
		KeySonarTopic:  topics.Sonar,
		KeyLeftTopic:   topics.Left,
		KeyRightTopic:  topics.Right,
		KeyRecord:      "",
		KeyMonitorPort: 0,
		KeyOpenBrowser: false,
		KeyLogLevel:    "info",
	}

	for k, value := range keys {
		v.SetDefault(k, value)
	}
}

// RegisterFlags declares one flag per configuration key.
func RegisterFlags(fs *pflag.FlagSet) {
	topics := control.DefaultTopics()

	fs.String(KeyNetFile, "", "genome file to load (required)")
	fs.Float64(KeyRate, 10, "tick frequency in Hz")
	fs.Float64(KeyHormone, 0, "hormone level applied before every step")
	fs.String(KeyActivation, "sigmoid",
		"unit activation, one of "+strings.Join(nn.ListActivations(), ", "))
	fs.Int(KeyQueueSize, 100, "sonar messages kept between two ticks")
	fs.String(KeySonarTopic, topics.Sonar, "topic of the sonar readings")
	fs.String(KeyLeftTopic, topics.Left, "topic of the left motor commands")
	fs.String(KeyRightTopic, topics.Right, "topic of the right motor commands")
	fs.String(KeyRecord, "", "SQLite file to record every tick into")
	fs.Int(KeyMonitorPort, 0, "port of the monitoring server, 0 disables it")
	fs.Bool(KeyOpenBrowser, false, "open the monitor in a browser")
	fs.String(KeyLogLevel, "info", "debug, info, warning, error or critical")
}

// Load resolves the configuration. The envFile is read first when it exists;
// variables already set in the environment win over it. flags may be nil.
func Load(flags *pflag.FlagSet, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		logging.Debugf("unmarshaling configuration failed: %v", err)
		return nil, err
	}

	if err := Validate(c); err != nil {
		return nil, err
	}

	return c, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	logging.Debugf("environment loaded from %s", path)

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
	})

	mustRegister(v, "activation", func(fl validator.FieldLevel) bool {
		_, err := nn.GetActivation(fl.Field().String())
		return err == nil
	})

	mustRegister(v, "loglevel", func(fl validator.FieldLevel) bool {
		return logging.ParseLevel(fl.Field().String()) != logging.LUNKNOWN
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks the values of the configuration. A required key without a
// value yields an error wrapping ErrConfigMissing.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s (flag --%s or %s_%s)",
				ErrConfigMissing, fe.Field(), fe.Field(),
				EnvPrefix, envName(fe.Field()))
		}
	}

	fe := fieldErrs[0]

	return fmt.Errorf("invalid configuration: %s=%v does not satisfy %q",
		fe.Field(), fe.Value(), fe.Tag())
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
