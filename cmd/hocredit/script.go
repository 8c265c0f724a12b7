package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/gardar/hocredit/pkg/editor"
	"github.com/gardar/hocredit/pkg/ocr"
)

// script is a YAML list of edit steps run in order. Steps without nodes act
// on the current selection.
//
//	steps:
//	  - op: select
//	    nodes: [4, 5]
//	  - op: merge
//	  - op: split
//	    node: 4
//	    offset: 30
//	    texts: [hello, world]
//	  - op: group        # one undo step
//	    steps:
//	      - op: text
//	        node: 3
//	        text: "new line text"
//	      - op: bbox
//	        node: 3
//	        bbox: [10, 10, 200, 40]
//	  - op: ocr
//	    region: [0, 400, 600, 800]
//	  - op: undo
//	    count: 2
type script struct {
	Steps []step `yaml:"steps"`
}

type step struct {
	Op     string   `yaml:"op"`
	Node   int      `yaml:"node"`
	Nodes  []int    `yaml:"nodes"`
	Target int      `yaml:"target"`
	Index  *int     `yaml:"index"`
	Offset int      `yaml:"offset"`
	Text   string   `yaml:"text"`
	Texts  []string `yaml:"texts"`
	BBox   []int    `yaml:"bbox"`
	Region []int    `yaml:"region"`
	Back   bool     `yaml:"back"`
	Count  int      `yaml:"count"`
	Steps  []step   `yaml:"steps"`
}

var (
	errUnknownOp   = errors.New("unknown op")
	errUnknownNode = errors.New("unknown node")
	errBadStep     = errors.New("invalid step")
	errNoImage     = errors.New("ocr needs a page image, see -image")
	errNoClipboard = errors.New("nothing copied")
)

var ops = map[string]bool{
	"select": true, "delete": true, "merge": true, "split": true,
	"move": true, "reorder": true, "crop": true, "text": true,
	"bbox": true, "copy": true, "paste": true, "cycle": true,
	"ocr": true, "undo": true, "redo": true, "group": true,
}

func parseScript(data []byte) (*script, error) {
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := validateSteps(s.Steps, "", false); err != nil {
		return nil, err
	}
	return &s, nil
}

// validateSteps checks steps before anything runs. Groups cannot nest and
// cannot undo, since the group is one open batch.
func validateSteps(steps []step, prefix string, grouped bool) error {
	for i, st := range steps {
		pos := fmt.Sprintf("%s%d", prefix, i+1)
		if !ops[st.Op] {
			return fmt.Errorf("step %s: %w %q", pos, errUnknownOp, st.Op)
		}
		switch {
		case st.Op == "split" && len(st.Texts) != 2:
			return fmt.Errorf("step %s: %w: split needs two texts", pos, errBadStep)
		case st.Op == "bbox" && len(st.BBox) != 4:
			return fmt.Errorf("step %s: %w: bbox needs four coordinates", pos, errBadStep)
		case st.Op == "ocr" && len(st.Region) != 0 && len(st.Region) != 4:
			return fmt.Errorf("step %s: %w: region needs four coordinates", pos, errBadStep)
		case st.Op == "reorder" && st.Index == nil:
			return fmt.Errorf("step %s: %w: reorder needs an index", pos, errBadStep)
		case grouped && (st.Op == "group" || st.Op == "undo" || st.Op == "redo"):
			return fmt.Errorf("step %s: %w: %s inside a group", pos, errBadStep, st.Op)
		case st.Op == "group":
			if err := validateSteps(st.Steps, pos+".", true); err != nil {
				return err
			}
		}
	}
	return nil
}

// runner applies script steps to a document. OCR requests go through the
// dispatcher; their results are applied here, never on a worker.
type runner struct {
	doc   *editor.Document
	ocr   *ocr.Dispatcher
	image []byte
	clip  *editor.Clipboard
	log   *slog.Logger
}

func (r *runner) run(ctx context.Context, steps []step) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
		r.log.Debug("step done", "op", st.Op, "undo", r.doc.History().UndoDepth(), "dirty", r.doc.Dirty())
	}
	return nil
}

func (r *runner) step(ctx context.Context, st step) error {
	d := r.doc
	switch st.Op {
	case "select":
		if len(st.Nodes) == 0 {
			d.ClearSelection()
			return nil
		}
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		return d.Select(nodes...)
	case "delete":
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		return d.Delete(nodes...)
	case "merge":
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		_, err = d.Merge(nodes...)
		return err
	case "split":
		n, err := r.node(st.Node)
		if err != nil {
			return err
		}
		_, err = d.Split(n, st.Offset, st.Texts[0], st.Texts[1])
		return err
	case "move":
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		target, err := r.node(st.Target)
		if err != nil {
			return err
		}
		index := -1
		if st.Index != nil {
			index = *st.Index
		}
		return d.Move(nodes, target, index)
	case "reorder":
		n, err := r.node(st.Node)
		if err != nil {
			return err
		}
		return d.Reorder(n, *st.Index)
	case "crop":
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		return d.Crop(nodes...)
	case "text":
		n, err := r.node(st.Node)
		if err != nil {
			return err
		}
		return d.ApplyText(n, st.Text)
	case "bbox":
		n, err := r.node(st.Node)
		if err != nil {
			return err
		}
		b := st.BBox
		return d.UpdateBoxes(map[*editor.Node]editor.Rect{n: editor.NewRect(b[0], b[1], b[2], b[3])})
	case "copy":
		nodes, err := r.nodes(st.Nodes)
		if err != nil {
			return err
		}
		clip, err := d.Copy(nodes...)
		if err != nil {
			return err
		}
		r.clip = clip
		return nil
	case "paste":
		if r.clip.Len() == 0 {
			return errNoClipboard
		}
		_, err := d.Paste(r.clip)
		return err
	case "cycle":
		_, err := d.CycleSelection(!st.Back)
		return err
	case "ocr":
		return r.recognize(ctx, st)
	case "undo", "redo":
		for range max(st.Count, 1) {
			if st.Op == "undo" {
				d.Undo()
			} else {
				d.Redo()
			}
		}
		return nil
	case "group":
		return d.History().Transaction(func() error {
			return r.run(ctx, st.Steps)
		})
	}
	return fmt.Errorf("%w %q", errUnknownOp, st.Op)
}

// node resolves an id.
func (r *runner) node(id int) (*editor.Node, error) {
	n := r.doc.Lookup(id)
	if n == nil {
		return nil, fmt.Errorf("%w %d", errUnknownNode, id)
	}
	return n, nil
}

// nodes resolves ids, or returns the selection when ids is empty.
func (r *runner) nodes(ids []int) ([]*editor.Node, error) {
	if len(ids) == 0 {
		return r.doc.SelectedNodes(), nil
	}
	out := make([]*editor.Node, 0, len(ids))
	for _, id := range ids {
		n, err := r.node(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// recognize submits the region and waits for its result, then splices the
// recognised areas under the page.
func (r *runner) recognize(ctx context.Context, st step) error {
	if r.ocr == nil || len(r.image) == 0 {
		return errNoImage
	}
	in := ocr.Input{Image: r.image}
	if len(st.Region) == 4 {
		in.Region = image.Rect(st.Region[0], st.Region[1], st.Region[2], st.Region[3])
	}
	const key = "page"
	seq := r.ocr.Submit(ctx, key, in)

	for {
		select {
		case <-ctx.Done():
			r.ocr.Cancel(key)
			return ctx.Err()
		case res, ok := <-r.ocr.Results():
			if !ok {
				return errors.New("ocr dispatcher closed")
			}
			if !r.ocr.Accept(res) {
				continue
			}
			if res.Err != nil {
				return res.Err
			}
			roots, err := editor.ImportSubtree(r.doc, res.Page, res.Input.Region.Min)
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				r.log.Warn("no text recognised", "region", res.Input.Region)
			} else if err := r.doc.Splice(r.doc.Root(), roots...); err != nil {
				return err
			}
			if res.Seq == seq {
				return nil
			}
		}
	}
}
