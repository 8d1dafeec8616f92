package assembly

import (
	"fmt"
	"sort"

	"blockview/internal/profiling"
	"blockview/pkg/blockmodel"
)

// Scene receives the descriptors produced by a walk.
type Scene interface {
	AddMesh(m Mesh)
	AddConnector(c Connector)
}

// Diagnostic records a block that was skipped.
type Diagnostic struct {
	Region string
	Block  int
	Err    error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("region %q block %d: %v", d.Region, d.Block, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Report summarises a walk.
type Report struct {
	Blocks      int
	Meshes      int
	Connectors  int
	Diagnostics []Diagnostic
}

// Walker visits every region, block and placement of a document.
type Walker struct {
	// Profiler is optional.
	Profiler *profiling.Recorder
	// Pool, when set, assembles blocks concurrently. Descriptors still
	// reach the scene in document order.
	Pool *Pool
}

// task is one block ready for assembly, or the reason it was skipped.
type task struct {
	region string
	index  int
	block  *blockmodel.Block
	mat    Material
	err    error
}

// Walk assembles the whole document into scene. Regions are visited in
// name order, blocks and placements in document order. A block whose
// texture cannot be resolved or whose definition is malformed is skipped
// together with all of its placements and reported as a diagnostic.
func (w *Walker) Walk(doc *blockmodel.Document, scene Scene) Report {
	defer w.Profiler.Track("assembly.Walk")()

	tasks := plan(doc)
	results := make([][]Assembly, len(tasks))
	if w.Pool != nil {
		w.Pool.run(tasks, results)
	} else {
		for i := range tasks {
			if tasks[i].err == nil {
				results[i] = assembleTask(&tasks[i], w.Profiler)
			}
		}
	}

	var rep Report
	for i, t := range tasks {
		if t.err != nil {
			rep.Diagnostics = append(rep.Diagnostics, Diagnostic{Region: t.region, Block: t.index, Err: t.err})
			continue
		}
		rep.Blocks++
		for _, a := range results[i] {
			scene.AddMesh(a.Mesh)
			for _, c := range a.Connectors {
				scene.AddConnector(c)
			}
			rep.Meshes++
			rep.Connectors += len(a.Connectors)
		}
	}
	return rep
}

// plan resolves textures and validates every block up front.
func plan(doc *blockmodel.Document) []task {
	names := make([]string, 0, len(doc.Regions))
	for name := range doc.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	var tasks []task
	for _, name := range names {
		region := doc.Regions[name]
		for i := range region.Blocks {
			t := task{region: name, index: i, block: &region.Blocks[i]}
			path, err := region.ResolveTexture(t.block.Texture)
			if err == nil {
				err = t.block.Validate()
			}
			t.mat, t.err = Material{Texture: path}, err
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func assembleTask(t *task, profiler *profiling.Recorder) []Assembly {
	out := make([]Assembly, 0, len(t.block.Positions))
	for i := range t.block.Positions {
		stop := profiler.Track("assembly.Assemble")
		out = append(out, Assemble(t.block, t.mat, t.block.Position(i)))
		stop()
	}
	return out
}

// Walk runs a sequential Walker without profiling.
func Walk(doc *blockmodel.Document, scene Scene) Report {
	var w Walker
	return w.Walk(doc, scene)
}
