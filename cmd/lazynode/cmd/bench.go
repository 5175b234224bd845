package cmd

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-drift/lazynode/cmd/lazynode/internal/config"
	"github.com/go-drift/lazynode/pkg/collection"
	"github.com/go-drift/lazynode/pkg/errors"
	"github.com/go-drift/lazynode/pkg/layout"
	"github.com/go-drift/lazynode/pkg/mapping"
	"github.com/go-drift/lazynode/pkg/rendering"
	"github.com/go-drift/lazynode/pkg/view"
)

// visibleWindow is how many leading elements the simulated viewport shows.
const visibleWindow = 20

func init() {
	RegisterCommand(&Command{
		Name:  "bench",
		Short: "Run a simulated collection",
		Long: `Run a simulated collection and report allocation and layout timings.

Elements are created with lazy node factories, allocated in batches on the
operation queue, re-measured for a narrower container, shown in a viewport
and finally half of them are deallocated.

Flags:
  --dir DIR          Project directory (default: nearest lazynode.yaml or go.mod)
  --elements N       Number of elements (default: bench.elements)
  --batch N          Elements per realloc batch (default: bench.batch_size)
  --workers N        Concurrent operations and layouts (default: engine.workers)
  --verbose          Print stack traces for reported errors`,
		Usage: "lazynode bench [--dir DIR] [--elements N] [--batch N] [--workers N] [--verbose]",
		Run:   runBench,
	})
}

func runBench(args []string) error {
	dir := ""
	overrides := map[string]int{}
	verbose := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--verbose":
			verbose = true
		case "--dir":
			if i+1 >= len(args) {
				return fmt.Errorf("--dir requires a directory path")
			}
			dir = args[i+1]
			i++
		case "--elements", "--batch", "--workers":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a number", args[i])
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			overrides[args[i]] = n
			i++
		default:
			return fmt.Errorf("unknown flag %q", args[i])
		}
	}

	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return err
		}
		dir = root
	}

	cfg, err := config.Resolve(dir)
	if err != nil {
		return &errors.Error{Op: "lazynode.bench", Kind: errors.KindConfig, Err: err}
	}
	if n, ok := overrides["--elements"]; ok {
		cfg.Elements = n
	}
	if n, ok := overrides["--batch"]; ok {
		cfg.BatchSize = n
	}
	if n, ok := overrides["--workers"]; ok {
		cfg.Workers = n
	}
	cfg.Verbose = cfg.Verbose || verbose
	if err := cfg.Validate(); err != nil {
		return &errors.Error{Op: "lazynode.bench", Kind: errors.KindConfig, Err: err}
	}

	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Verbose})
	defer errors.SetHandler(nil)

	report, err := runBenchmark(context.Background(), cfg)
	if err != nil {
		return err
	}
	report.print(os.Stdout, cfg)
	return nil
}

// benchOwner is the range-managing node of the simulated collection.
type benchOwner struct {
	allocated   atomic.Int64
	deallocated atomic.Int64
}

func (o *benchOwner) InterfaceState() collection.InterfaceState {
	return collection.InterfaceStateNone.Enter(collection.InterfaceStateVisible)
}

func (o *benchOwner) ElementDidAllocateNode(*collection.Element)   { o.allocated.Add(1) }
func (o *benchOwner) ElementDidDeallocateNode(*collection.Element) { o.deallocated.Add(1) }

// benchDisplay stands in for a platform view.
type benchDisplay struct {
	frame rendering.Rect
}

func (d *benchDisplay) SetFrame(frame rendering.Rect) { d.frame = frame }

type benchReport struct {
	Elements      int
	Batches       int
	Allocated     int64
	Deallocated   int64
	ContentHeight float64
	Displayed     int

	Allocate   time.Duration
	Relayout   time.Duration
	Viewport   time.Duration
	Deallocate time.Duration
}

func runBenchmark(ctx context.Context, cfg *config.Resolved) (*benchReport, error) {
	registry := collection.NewRegistry()
	owner := &benchOwner{}
	handle := registry.Register(owner)
	defer registry.Unregister(handle)

	queue := collection.NewOperationQueue(collection.QueueOptions{MaxConcurrent: cfg.Workers})
	defer queue.Close()
	scheduler := collection.NewScheduler(queue)
	scheduler.MaxConcurrentLayout = cfg.Workers

	cell := layout.NewSizeRange(
		rendering.Size{Width: cfg.CellWidth},
		rendering.Size{Width: cfg.CellWidth, Height: cfg.CellHeight * 4},
	)
	icon := benchIcon()
	display := mapping.WithFactory(func(mapping.MappingKey) mapping.DisplayElement { return &benchDisplay{} })

	elements := make([]*collection.Element, cfg.Elements)
	for i := range elements {
		title := mapping.AttributedText{Text: fmt.Sprintf("Item %d", i)}
		key := mapping.MappingKey("item-" + strconv.Itoa(i))
		factory := func() collection.Node {
			if i%2 == 0 {
				return mapping.NewText(key, title, display)
			}
			return mapping.ButtonOf(key, icon, title, display)
		}
		elements[i] = collection.NewElement(collection.ElementConfig{
			NodeModel:       title.Text,
			NodeFactory:     factory,
			ConstrainedSize: cell,
			Owner:           handle,
			Registry:        registry,
		})
	}

	report := &benchReport{Elements: len(elements)}

	start := time.Now()
	for lo := 0; lo < len(elements); lo += cfg.BatchSize {
		hi := min(lo+cfg.BatchSize, len(elements))
		for _, e := range elements[lo:hi] {
			e.EnterInterfaceState(collection.InterfaceStatePreload)
			scheduler.ScheduleAllocate(e)
		}
		if _, err := scheduler.Flush(); err != nil {
			return nil, err
		}
		report.Batches++
	}
	queue.Wait()
	report.Allocate = time.Since(start)

	start = time.Now()
	narrow := layout.NewSizeRange(
		rendering.Size{Width: cfg.CellWidth / 2},
		rendering.Size{Width: cfg.CellWidth / 2, Height: cfg.CellHeight * 4},
	)
	items := make([]layout.Element, len(elements))
	for i, e := range elements {
		e.SetConstrainedSize(narrow)
		scheduler.ScheduleLayout(e)
		items[i] = collection.NewFlowLayoutItem(e)
	}
	if err := scheduler.FlushLayout(ctx); err != nil {
		return nil, err
	}
	content := layout.Measure(&layout.StackSpec{Direction: layout.StackVertical, Children: items}, layout.Unconstrained())
	report.ContentHeight = content.Size.Height
	report.Relayout = time.Since(start)

	start = time.Now()
	visible := elements[:min(visibleWindow, len(elements))]
	viewport := &view.View{
		AutomaticallyManageSubviews: true,
		LayoutSpecBlock: func(*view.View, layout.SizeRange) layout.Element {
			children := make([]layout.Element, 0, len(visible))
			for _, e := range visible {
				if node := e.NodeIfAllocated(); node != nil {
					children = append(children, node)
				}
			}
			return &layout.StackSpec{Direction: layout.StackVertical, Children: children}
		},
	}
	for _, e := range visible {
		e.EnterInterfaceState(collection.InterfaceStateVisible)
	}
	viewport.CalculateLayout(narrow.Loosen())
	viewport.ApplyLayout()
	report.Displayed = len(viewport.Subviews())
	report.Viewport = time.Since(start)

	start = time.Now()
	for _, e := range elements[len(elements)/2:] {
		e.ExitInterfaceState(collection.InterfaceStatePreload)
		scheduler.ScheduleDeallocate(e)
	}
	if _, err := scheduler.Flush(); err != nil {
		return nil, err
	}
	queue.Wait()
	report.Deallocate = time.Since(start)

	report.Allocated = owner.allocated.Load()
	report.Deallocated = owner.deallocated.Load()
	return report, nil
}

func (r *benchReport) print(out io.Writer, cfg *config.Resolved) {
	fmt.Fprintf(out, "Project: %s (engine %s)\n", cfg.AppName, cfg.EngineVersion)
	fmt.Fprintf(out, "Workers: %d, batch size: %d\n", cfg.Workers, cfg.BatchSize)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-12s %d elements in %d batches, %s\n", "allocate", r.Allocated, r.Batches, r.Allocate)
	fmt.Fprintf(out, "  %-12s %d elements, content height %.0f, %s\n", "relayout", r.Elements, r.ContentHeight, r.Relayout)
	fmt.Fprintf(out, "  %-12s %d display objects, %s\n", "viewport", r.Displayed, r.Viewport)
	fmt.Fprintf(out, "  %-12s %d elements, %s\n", "deallocate", r.Deallocated, r.Deallocate)
}

func benchIcon() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 24, 24))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: 0x80}}, image.Point{}, draw.Src)
	return img
}
