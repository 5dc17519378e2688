package simulator

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Exposures int    `envconfig:"SIM_EXPOSURES" default:"10000"`
	Seed      int64  `envconfig:"SIM_SEED" default:"42"`
	Entity    string `envconfig:"SIM_ENTITY" default:"bank_eu"`
	Currency  string `envconfig:"SIM_CURRENCY" default:"EUR"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
