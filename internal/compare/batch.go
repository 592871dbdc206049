package compare

import (
	"fmt"

	"github.com/dbsmedya/erdsql/internal/ddl"
)

// Pair is one comparison of a batch.
type Pair struct {
	Name    string
	Schema1 string
	Schema2 string
}

// PairResult is the outcome of one Pair. When Err is set the pair could not
// be parsed and Result reports it as non-equivalent.
type PairResult struct {
	Name   string
	Result *Result
	Err    error
}

// CompareAll compares every pair. A parse failure is recorded on its pair
// and never stops the batch.
func (c *Checker) CompareAll(pairs []Pair) []PairResult {
	out := make([]PairResult, 0, len(pairs))
	for _, p := range pairs {
		res, err := c.Compare(p.Schema1, p.Schema2)
		if err != nil {
			res = &Result{Diagnostics: []string{fmt.Sprintf("parse failure: %v", err)}}
		}
		out = append(out, PairResult{Name: p.Name, Result: res, Err: err})
	}
	return out
}

// Document is a named schema text.
type Document struct {
	Name string
	SQL  string
}

// Class is a set of mutually equivalent documents. The first member is the
// representative every candidate is compared against.
type Class struct {
	Members []Document
	schema  *ddl.Schema
}

// Representative returns the first document of the class.
func (c *Class) Representative() Document {
	return c.Members[0]
}

// Failure is a document that could not be parsed.
type Failure struct {
	Document Document
	Err      error
}

// Partition groups documents into equivalence classes.
type Partition struct {
	Classes []*Class
	Failed  []Failure
}

// Partition assigns each document to the first class whose representative
// it is equivalent to, or opens a new class. Comparisons run against one
// representative per class only, so the cost is O(classes x documents).
func (c *Checker) Partition(docs []Document) *Partition {
	p := &Partition{}
	for _, doc := range docs {
		schema, err := Load(doc.SQL)
		if err != nil {
			p.Failed = append(p.Failed, Failure{Document: doc, Err: err})
			continue
		}

		placed := false
		for _, class := range p.Classes {
			if c.CompareSchemas(schema, class.schema).Equivalent {
				class.Members = append(class.Members, doc)
				placed = true
				break
			}
		}
		if !placed {
			p.Classes = append(p.Classes, &Class{Members: []Document{doc}, schema: schema})
		}
	}
	return p
}
