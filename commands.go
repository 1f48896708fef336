package quads

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Exit stops the app after the current frame.
func (cmd *Commands) Exit() {
	cmd.app.exitRequested = true
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// OptionalResource returns a resource a system can run without.
func OptionalResource[T any](cmd *Commands) (*T, bool) {
	return Resource[T](cmd.app)
}
