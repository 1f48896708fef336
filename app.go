package quads

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	exitRequested bool
	frames        uint64
	exitHooks     []func()
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run executes every stage once per frame until a system requests exit.
func (app *App) Run() {
	app.Logger().Infof("Running %d stages", len(app.stages))
	for !app.exitRequested {
		app.Update()
	}
	app.runExitHooks()
}

// Update runs a single frame.
func (app *App) Update() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frames++
}

// Frames counts the frames run so far.
func (app *App) Frames() uint64 { return app.frames }

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

// Resource looks up a resource by its type.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := res.(*T)
	return typed, ok
}

// OnExit registers fn to run when Run returns, in reverse registration order.
func (app *App) OnExit(fn func()) {
	app.exitHooks = append(app.exitHooks, fn)
}

func (app *App) runExitHooks() {
	for i := len(app.exitHooks) - 1; i >= 0; i-- {
		app.exitHooks[i]()
	}
	app.exitHooks = nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}
