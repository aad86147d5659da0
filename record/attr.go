// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

// Attribute is implemented by the marker types below; each names one
// field a Record or Aggregate exposes.
type Attribute interface {
	fromRecord(*Record) []byte
	fromAggregate(*Aggregate) [][]byte
}

// ID selects the record identifier / cell identifier.
type ID struct{}

// Read1 selects the first-mate sequence.
type Read1 struct{}

// Read2 selects the second-mate sequence.
type Read2 struct{}

// Qual1 selects the first-mate quality string.
type Qual1 struct{}

// Qual2 selects the second-mate quality string.
type Qual2 struct{}

// Tag selects the molecular tag (UMI/barcode).
type Tag struct{}

func (ID) fromRecord(r *Record) []byte    { return r.id }
func (Read1) fromRecord(r *Record) []byte { return r.read1 }
func (Read2) fromRecord(r *Record) []byte { return r.read2 }
func (Qual1) fromRecord(r *Record) []byte { return r.qual1 }
func (Qual2) fromRecord(r *Record) []byte { return r.qual2 }
func (Tag) fromRecord(r *Record) []byte   { return r.tag }

func (ID) fromAggregate(a *Aggregate) [][]byte    { return [][]byte{a.id} }
func (Read1) fromAggregate(a *Aggregate) [][]byte { return a.reads1 }
func (Read2) fromAggregate(a *Aggregate) [][]byte { return a.reads2 }
func (Qual1) fromAggregate(a *Aggregate) [][]byte { return a.quals1 }
func (Qual2) fromAggregate(a *Aggregate) [][]byte { return a.quals2 }
func (Tag) fromAggregate(a *Aggregate) [][]byte   { return a.tags }

// Get reads attribute A off a Record, e.g. record.Get[record.Read1](r).
func Get[A Attribute](r *Record) []byte {
	var a A
	return a.fromRecord(r)
}

// GetAll reads attribute A off an Aggregate as the ordered collection of
// per-absorbed-record values, e.g. record.GetAll[record.Qual1](agg).
func GetAll[A Attribute](a *Aggregate) [][]byte {
	var attr A
	return attr.fromAggregate(a)
}
