package global

import (
	"context"
	"sync"

	"github.com/seventv/AtlasProcessor/src/configure"
	"github.com/seventv/AtlasProcessor/src/task"
)

type Context interface {
	context.Context
	Instances() *Instances
	Config() *configure.Config
	Settings() *configure.Settings
	AddTask(n int)
	DoneTask()
	Wait()
}

type GlobalContext struct {
	context.Context
	Insts *Instances
	Cfg   *configure.Config
	Sets  *configure.Settings
	wg    *sync.WaitGroup
}

func New(ctx context.Context, config *configure.Config) Context {
	g := &GlobalContext{
		Context: ctx,
		Insts:   &Instances{},
		Cfg:     config,
		Sets:    configure.NewSettings(config),
		wg:      &sync.WaitGroup{},
	}
	g.Insts.Runner = task.NewRunner(g)

	return g
}

func (g *GlobalContext) Instances() *Instances {
	return g.Insts
}

func (g *GlobalContext) Config() *configure.Config {
	return g.Cfg
}

func (g *GlobalContext) Settings() *configure.Settings {
	return g.Sets
}

func (g *GlobalContext) AddTask(n int) {
	g.wg.Add(n)
}

func (g *GlobalContext) DoneTask() {
	g.wg.Done()
}

// Wait blocks until every task started through the runner has finished.
func (g *GlobalContext) Wait() {
	g.wg.Wait()
}
