// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Butterfly-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "butterfly.log")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "butterfly.db")

	viper.SetDefault("survey.defaultlocation", "")

	viper.SetDefault("export.path", "exports/")

	viper.SetDefault("photos.enabled", true)
	viper.SetDefault("photos.endpoint", "https://en.wikipedia.org/api/rest_v1/page/summary")
	viper.SetDefault("photos.timeout", 5)
	viper.SetDefault("photos.cachettl", 1440)

	viper.SetDefault("geocode.enabled", true)
	viper.SetDefault("geocode.endpoint", "https://nominatim.openstreetmap.org/reverse")
	viper.SetDefault("geocode.timeout", 5)
	viper.SetDefault("geocode.cachettl", 1440)
}
