package ips

import (
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _ipsconfig{}
)

// _ipsconfig is a "hidden" struct, just use `ipsConfig`
type _ipsconfig struct {
	VSOP87    bool
	VSOP87Dir string
}

// ipsConfig returns the simulator configuration.
// Without an `IPS_CONFIG` environment variable, or without a readable
// conf.toml in that directory, the analytic ephemeris is used.
func ipsConfig() _ipsconfig {
	if cfgLoaded {
		return config
	}
	cfgLoaded = true
	confPath := os.Getenv("IPS_CONFIG")
	if confPath == "" {
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		return config
	}
	config = _ipsconfig{
		VSOP87:    viper.GetBool("VSOP87.enabled"),
		VSOP87Dir: viper.GetString("VSOP87.directory"),
	}
	return config
}
