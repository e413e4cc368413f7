package cache

import (
	"time"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

type pipelineOp uint8

const (
	opGet pipelineOp = iota
	opSet
	opDel
)

type pipelineCmd struct {
	op    pipelineOp
	key   string
	value []byte
	ttl   time.Duration
}

// Pipeline is an ordered list of commands executed on a single connection in
// one round-trip.
//
// A pipeline is the unit of atomicity of the cache: commands of one pipeline
// are applied in declared order without interleaved commands from the same
// client, but it is not a transaction. Concurrent readers may observe
// mid-pipeline state.
type Pipeline struct {
	cmds []pipelineCmd
	// values receives the result of each GET command, in command order.
	// A nil entry is a miss.
	values [][]byte
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Get appends a GET command for the given key.
func (p *Pipeline) Get(key string) {
	p.cmds = append(p.cmds, pipelineCmd{op: opGet, key: key})
}

// Set appends a SET command, or SETEX when ttl is positive.
func (p *Pipeline) Set(key string, value []byte, ttl time.Duration) {
	p.cmds = append(p.cmds, pipelineCmd{op: opSet, key: key, value: value, ttl: ttl})
}

// Del appends a DEL command for the given key.
func (p *Pipeline) Del(key string) {
	p.cmds = append(p.cmds, pipelineCmd{op: opDel, key: key})
}

// SetModel encodes a model and appends a SET command honoring the model's
// default expiry.
func (p *Pipeline) SetModel(m model.Model) error {
	buf, err := Encode(m)
	if err != nil {
		return err
	}
	p.Set(m.Key(), buf, m.Expiry())
	return nil
}

// Len returns the number of queued commands.
func (p *Pipeline) Len() int { return len(p.cmds) }

// Values returns the results of the GET commands of an executed pipeline, in
// command order. Missing keys yield nil entries.
func (p *Pipeline) Values() [][]byte { return p.values }
