// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gfa loads the vertex labels and adjacency of a sequence graph from
// its GFA description.
//
// Only segment (S) and link (L) lines are read. Every other record type is
// skipped, and so are the orientation and overlap columns of links: offsets
// and overlaps are derived from alignment paths alone.
package gfa

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/algbio/alneval/common"

	"github.com/biogo/graph"
)

// maxLine bounds a single GFA line. Segment labels of whole chromosomes
// exceed bufio's default token size.
const maxLine = 1 << 30

// Graph is a read-only sequence graph.
type Graph struct {
	file   string
	labels map[string]string
	edges  map[string][]string
	nEdges int
}

// Load reads the GFA file at path.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Parse(f)
	if err != nil {
		return nil, common.InFile(err, path)
	}
	g.file = path
	return g, nil
}

// Parse reads a GFA description from r.
func Parse(r io.Reader) (*Graph, error) {
	g := &Graph{
		labels: make(map[string]string),
		edges:  make(map[string][]string),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var lineno int
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'S':
			f := strings.Fields(line[1:])
			if len(f) < 2 {
				return nil, common.Formatf(fmt.Sprintf("line %d", lineno), "segment has %d fields, want at least 2", len(f))
			}
			if f[1] == "*" {
				return nil, common.Formatf(fmt.Sprintf("line %d", lineno), "segment %s has no sequence", f[0])
			}
			if _, ok := g.labels[f[0]]; ok {
				return nil, common.Formatf(fmt.Sprintf("line %d", lineno), "duplicate segment %s", f[0])
			}
			g.labels[f[0]] = f[1]
		case 'L':
			f := strings.Fields(line[1:])
			if len(f) < 3 {
				return nil, common.Formatf(fmt.Sprintf("line %d", lineno), "link has %d fields, want at least 3", len(f))
			}
			tail, head := f[0], f[2]
			g.edges[tail] = append(g.edges[tail], head)
			g.nEdges++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Label returns the label of vertex id. Vertex ids are only checked here,
// so a link or path naming an undeclared vertex is reported when it is
// first dereferenced.
func (g *Graph) Label(id string) (string, error) {
	l, ok := g.labels[id]
	if !ok {
		return "", &common.FormatError{File: g.file, Record: "vertex " + id, Err: fmt.Errorf("undeclared vertex")}
	}
	return l, nil
}

// Len returns the label length of vertex id.
func (g *Graph) Len(id string) (int, error) {
	l, err := g.Label(id)
	return len(l), err
}

// Heads returns the heads of the links leaving tail, in file order.
func (g *Graph) Heads(tail string) []string {
	return g.edges[tail]
}

// NumVertices returns the number of declared vertices.
func (g *Graph) NumVertices() int { return len(g.labels) }

// NumEdges returns the number of links.
func (g *Graph) NumEdges() int { return g.nEdges }

// Components returns the number of weakly connected components. Links to
// undeclared vertices add those vertices to the count.
func (g *Graph) Components() int {
	u := graph.NewUndirected()
	nodes := make(map[string]graph.Node, len(g.labels))
	node := func(id string) graph.Node {
		n, ok := nodes[id]
		if !ok {
			n = u.NewNode()
			u.Add(n)
			nodes[id] = n
		}
		return n
	}
	for id := range g.labels {
		node(id)
	}
	for tail, heads := range g.edges {
		for _, head := range heads {
			if tail == head {
				continue
			}
			u.ConnectWith(node(tail), node(head), graph.NewEdge())
		}
	}
	return len(graph.ConnectedComponents(u, func(graph.Edge) bool { return true }))
}
