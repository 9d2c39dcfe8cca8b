package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	projectDir string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithProjectDir sets the project directory to analyze.
func WithProjectDir(dir string) Option {
	return func(a *application) {
		a.projectDir = dir
	}
}
