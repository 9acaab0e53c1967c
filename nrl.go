// Package nrl is a client for hierarchical instrument-response catalogs
// laid out like the IRIS Nominal Response Library (http://ds.iris.edu/NRL/):
// a tree of index descriptions navigated by named choices (manufacturer,
// model, configuration) down to RESP leaf files, with one tree for
// sensors and one for data loggers. The catalog can be a local directory
// or a remote HTTP tree; sub-catalogs are parsed lazily on first access.
package nrl

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-wordwrap"
	"go.uber.org/zap"

	"github.com/seistools/nrl/internal/store"
	"github.com/seistools/nrl/resp"
)

// DefaultRoot is the public NRL instance used when no root is given.
const DefaultRoot = "http://ds.iris.edu/NRL"

// Options configures a Client. The zero value is usable.
type Options struct {
	Timeout   time.Duration // remote request timeout
	CacheSize int           // remote in-memory response cache capacity
	DiskCache string        // optional persistent fetch cache path, remote only
	Logger    *zap.Logger   // defaults to zap.NewNop()
}

// DefaultOptions returns the options New uses for unset fields.
func DefaultOptions() Options {
	def := store.DefaultOptions()
	return Options{
		Timeout:   def.Timeout,
		CacheSize: def.CacheSize,
	}
}

// Client resolves catalog key paths to RESP texts and combines a sensor
// and a data-logger response into a single channel response. The
// transport is fixed at construction; the two top-level trees expand
// lazily underneath it.
type Client struct {
	root  string
	store store.Store
	log   *zap.Logger

	Sensors     *Tree
	Dataloggers *Tree
}

// New opens the catalog at root. A root naming an existing local
// directory is read from the filesystem; anything else is fetched over
// HTTP. An empty root selects DefaultRoot.
func New(root string, opts Options) (*Client, error) {
	if root == "" {
		root = DefaultRoot
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	st, err := store.Open(root, store.Options{
		Timeout:       opts.Timeout,
		CacheSize:     opts.CacheSize,
		DiskCachePath: opts.DiskCache,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{root: root, store: st, log: log}
	if c.Sensors, err = buildTree(st, st.Join(st.Base(), "sensors", indexFile), log); err != nil {
		_ = st.Close()
		return nil, err
	}
	if c.Dataloggers, err = buildTree(st, st.Join(st.Base(), "dataloggers", indexFile), log); err != nil {
		_ = st.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the transport's resources.
func (c *Client) Close() error { return c.store.Close() }

// Root returns the catalog root the client was opened with.
func (c *Client) Root() string { return c.root }

// Sensor returns the catalog leaf addressed by keys in the sensors tree.
func (c *Client) Sensor(keys ...string) (*Leaf, error) {
	return c.Sensors.Resolve(keys...)
}

// Datalogger returns the catalog leaf addressed by keys in the
// dataloggers tree.
func (c *Client) Datalogger(keys ...string) (*Leaf, error) {
	return c.Dataloggers.Resolve(keys...)
}

// SensorRESP returns the raw RESP text for the sensor addressed by keys.
func (c *Client) SensorRESP(keys ...string) (string, error) {
	leaf, err := c.Sensors.Resolve(keys...)
	if err != nil {
		return "", err
	}
	return c.store.Resource(leaf.Resource)
}

// DataloggerRESP returns the raw RESP text for the data logger addressed
// by keys.
func (c *Client) DataloggerRESP(keys ...string) (string, error) {
	leaf, err := c.Dataloggers.Resolve(keys...)
	if err != nil {
		return "", err
	}
	return c.store.Resource(leaf.Resource)
}

// Response resolves both key paths and combines the results into a
// single channel response: the data logger's nominal first stage is
// replaced by the sensor's transducer stage, the rest of the
// digitization chain is kept unchanged and in order, and the overall
// sensitivity is recalculated at the reference frequency.
//
// A failed recalculation is logged as a warning and does not fail the
// merge; the combined response is still returned with whatever
// sensitivity value the attempt left behind.
func (c *Client) Response(dataloggerKeys, sensorKeys []string) (*resp.Response, error) {
	dlText, err := c.DataloggerRESP(dataloggerKeys...)
	if err != nil {
		return nil, err
	}
	srText, err := c.SensorRESP(sensorKeys...)
	if err != nil {
		return nil, err
	}

	dl, err := resp.Parse(dlText)
	if err != nil {
		return nil, fmt.Errorf("parse datalogger response: %w", err)
	}
	sr, err := resp.Parse(srText)
	if err != nil {
		return nil, fmt.Errorf("parse sensor response: %w", err)
	}

	if err := spliceStages(dl, sr); err != nil {
		return nil, err
	}
	if err := dl.RecalculateOverallSensitivity(); err != nil {
		c.log.Warn("failed to recalculate overall sensitivity", zap.Error(err))
	}
	return dl, nil
}

// spliceStages replaces the first stage of the data-logger response with
// the sensor's first stage, in place. Catalog data-logger entries carry
// a placeholder input transducer stage that is meant to be swapped out
// per sensor; everything after it is logger-specific and kept as is.
func spliceStages(dl, sr *resp.Response) error {
	if len(dl.Stages) == 0 || len(sr.Stages) == 0 {
		return fmt.Errorf("cannot combine responses: datalogger has %d stages, sensor has %d",
			len(dl.Stages), len(sr.Stages))
	}
	stages := make([]*resp.Stage, 0, len(dl.Stages))
	stages = append(stages, sr.Stages[0])
	stages = append(stages, dl.Stages[1:]...)
	dl.Stages = stages
	return nil
}

// String summarizes the catalog: its root and the sorted manufacturer
// labels of both top-level trees.
func (c *Client) String() string {
	var b strings.Builder
	b.WriteString("NRL catalog at " + c.root)
	fmt.Fprintf(&b, "\n  Sensors: %d manufacturers\n", c.Sensors.Len())
	if c.Sensors.Len() > 0 {
		b.WriteString(indentWrap(joinQuoted(c.Sensors.Keys()), "    "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  Dataloggers: %d manufacturers\n", c.Dataloggers.Len())
	if c.Dataloggers.Len() > 0 {
		b.WriteString(indentWrap(joinQuoted(c.Dataloggers.Keys()), "    "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// indentWrap wraps text to terminal width and prefixes every line with
// indent.
func indentWrap(text, indent string) string {
	width := 78 - len(indent)
	if width < 20 {
		width = 20
	}
	lines := strings.Split(wordwrap.WrapString(text, uint(width)), "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
