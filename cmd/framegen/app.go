package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/framegen/pkg/engine"
	"github.com/chazu/framegen/pkg/frame"
	"github.com/chazu/framegen/pkg/kernel"
	"github.com/chazu/framegen/pkg/kernel/manifold"
	"github.com/chazu/framegen/pkg/kernel/sdfx"
	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/params"
	"github.com/chazu/framegen/pkg/solid"
	"github.com/chazu/framegen/pkg/tessellate"
	"github.com/rs/zerolog"
)

// App runs the generate pipeline: input mesh and parameters, frame
// construction, tessellation.
type App struct {
	engine    *engine.Engine
	kernel    string
	meshCells int
	log       zerolog.Logger
}

// Input is a mesh in centimetres plus resolved parameters.
type Input struct {
	Mesh   *mesh.Mesh
	Params params.Parameters
}

// EvalErrorData is a script error with its location.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Output is everything one generate run produced.
type Output struct {
	Params    params.Parameters
	Result    *frame.Result
	Workspace *solid.Workspace
	Parts     []tessellate.Part
}

// NewApp creates an App using the named kernel ("sdfx" or "manifold").
// opts configure the script engine.
func NewApp(kernelName string, meshCells int, log zerolog.Logger, opts ...engine.Option) *App {
	return &App{
		engine:    engine.NewEngine(opts...),
		kernel:    kernelName,
		meshCells: meshCells,
		log:       log,
	}
}

func (a *App) newKernel() (kernel.Kernel, error) {
	switch strings.ToLower(a.kernel) {
	case "", "sdfx":
		return sdfx.NewWithResolution(a.meshCells), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q (want sdfx or manifold)", a.kernel)
}

// LoadScript evaluates a frame script. Parameters declared in the script
// override base. Script errors are returned as EvalErrorData with a nil
// error; fatal failures (timeout, panic) are returned as error.
func (a *App) LoadScript(ctx context.Context, source string, base params.Source) (Input, []EvalErrorData, error) {
	sc, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		a.log.Error().Err(err).Msg("script evaluation failed")
		return Input{}, nil, err
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			out = append(out, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return Input{}, out, nil
	}

	src := base
	if sc.HasParams {
		src = overlay(base, sc.Params)
	}
	p, err := src.Resolve()
	if err != nil {
		return Input{}, nil, err
	}
	m, err := sc.NormalizedMesh()
	if err != nil {
		return Input{}, nil, err
	}
	return Input{Mesh: m, Params: p}, nil, nil
}

// overlay returns base with every field set in top replaced. Values
// from top are expressed in top's units, so base values are rescaled
// when the units differ.
func overlay(base, top params.Source) params.Source {
	if top.Units == "" {
		top.Units = params.UnitCentimetre
	}
	baseScale, err1 := params.UnitScale(base.Units)
	topScale, err2 := params.UnitScale(top.Units)
	if err1 != nil || err2 != nil {
		return top
	}
	f := baseScale / topScale

	out := top
	outFields := out.Fields()
	for name, v := range base.Fields() {
		if dst := outFields[name]; *dst == nil && *v != nil {
			*dst = params.Float(**v * f)
		}
	}
	return out
}

// LoadMesh reads a mesh file and scales it from meshUnits to centimetres.
func (a *App) LoadMesh(path, meshUnits string, src params.Source) (Input, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return Input{}, err
	}
	scale, err := params.UnitScale(meshUnits)
	if err != nil {
		return Input{}, err
	}
	p, err := src.Resolve()
	if err != nil {
		return Input{}, err
	}
	return Input{Mesh: m.Scaled(scale), Params: p}, nil
}

// LoadScriptFile reads and evaluates a frame script from disk. Script
// errors are joined into the returned error.
func (a *App) LoadScriptFile(ctx context.Context, path string, base params.Source) (Input, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Input{}, err
	}
	in, evalErrs, err := a.LoadScript(ctx, string(source), base)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, 0, len(evalErrs))
		for _, e := range evalErrs {
			if e.Line > 0 {
				msgs = append(msgs, fmt.Sprintf("%s:%d: %s", path, e.Line, e.Message))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s: %s", path, e.Message))
			}
		}
		return Input{}, fmt.Errorf("script errors:\n%s", strings.Join(msgs, "\n"))
	}
	return in, nil
}

// Generate builds the frame for in and, when withMeshes is set,
// tessellates every output body.
func (a *App) Generate(ctx context.Context, in Input, withMeshes bool) (*Output, error) {
	k, err := a.newKernel()
	if err != nil {
		return nil, err
	}
	w := solid.NewWorkspace(k)

	a.log.Info().
		Int("vertices", in.Mesh.VertexCount()).
		Int("triangles", in.Mesh.TriangleCount()).
		Str("kernel", a.kernel).
		Msg("generating frame")

	res, err := frame.New(w, frame.WithLogger(a.log)).Execute(ctx, in.Mesh, in.Params)
	if err != nil {
		return nil, err
	}

	out := &Output{Params: in.Params, Result: res, Workspace: w}
	if !withMeshes {
		return out, nil
	}

	out.Parts, err = tessellate.Tessellate(w)
	if err != nil {
		return nil, err
	}
	a.log.Info().Int("parts", len(out.Parts)).Msg("tessellated")
	return out, nil
}
