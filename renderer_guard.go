package quads

import (
	"fmt"
	"reflect"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name string
}

var typeOfRendererTag = reflect.TypeOf(RendererTag{})

// ensureSingleRenderer panics if a renderer other than name is already installed.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if !app.hasResource(typeOfRendererTag) {
		app.addResources(&RendererTag{Name: name})
		app.Logger().Infof("Renderer selected: %s", name)
		return
	}
	tag, ok := Resource[RendererTag](app)
	if !ok {
		panic("RendererTag resource present with unexpected type")
	}
	if tag.Name != name {
		app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
		panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
	}
}
