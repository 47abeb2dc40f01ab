package outputs

import "github.com/hupe1980/lexfst/store"

// NoOutputs is the algebra of an FST without outputs, i.e. an acceptor.
type NoOutputs struct{}

var _ Outputs[struct{}] = NoOutputs{}

// NewNoOutputs returns the no-output algebra.
func NewNoOutputs() NoOutputs { return NoOutputs{} }

func (NoOutputs) Common(struct{}, struct{}) struct{}   { return struct{}{} }
func (NoOutputs) Subtract(struct{}, struct{}) struct{} { return struct{}{} }
func (NoOutputs) Add(struct{}, struct{}) struct{}      { return struct{}{} }

// Merge accepts duplicates: an acceptor has nothing to combine.
func (NoOutputs) Merge(struct{}, struct{}) (struct{}, error) { return struct{}{}, nil }

func (NoOutputs) Write(struct{}, store.DataOutput) error            { return nil }
func (NoOutputs) WriteFinalOutput(struct{}, store.DataOutput) error { return nil }
func (NoOutputs) Read(store.DataInput) (struct{}, error)            { return struct{}{}, nil }
func (NoOutputs) ReadFinalOutput(store.DataInput) (struct{}, error) { return struct{}{}, nil }

func (NoOutputs) NoOutput() struct{}            { return struct{}{} }
func (NoOutputs) IsNoOutput(struct{}) bool      { return true }
func (NoOutputs) Equal(struct{}, struct{}) bool { return true }
func (NoOutputs) Hash(struct{}) uint64          { return 0 }
func (NoOutputs) String(struct{}) string        { return "NO_OUTPUT" }
