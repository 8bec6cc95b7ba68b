package s7client

import (
	"errors"
	"fmt"

	"github.com/plctalk/go-s7/s7"
)

// ReadRange reads all variables of one data block in a single contiguous range
// transaction.
//
// The planner computes the minimal byte range covering every variable; gap bytes
// between variables are transferred but never interpreted. Each variable's Value
// is populated from the returned buffer and an EventValueObserved notification
// is emitted per variable.
//
// An empty variable list returns an empty result without any transport call. A
// transport failure fails the whole call with *s7.TransportError.
func (c *Client) ReadRange(dbNumber int, vars []*s7.Variable) ([]*s7.Variable, error) {
	if len(vars) == 0 {
		return []*s7.Variable{}, nil
	}
	if dbNumber <= 0 {
		return nil, fmt.Errorf("%w: data block number %d", s7.ErrInvalidVariable, dbNumber)
	}

	for _, v := range vars {
		if err := c.validateRangeVar(dbNumber, v); err != nil {
			return nil, err
		}
	}

	if !c.stateMgr.IsConnected() {
		return nil, s7.ErrNotConnected
	}

	offset, length, err := s7.RangeSpan(vars)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("range read", "method", "ReadRange", "db", dbNumber, "offset", offset, "length", length, "vars", len(vars))

	c.opMutex.Lock()
	buf, err := c.transport.ReadRange(dbNumber, offset, length)
	c.opMutex.Unlock()

	c.metrics.incRangeReadCount()
	if err != nil {
		c.metrics.incTransportErrCount()
		return nil, asTransportError(err)
	}

	// decode everything before assigning, so a decode failure leaves no
	// partial values or notifications behind
	vals := make([]any, len(vars))
	for i, v := range vars {
		val, err := s7.Decode(v.Type, buf, v.Start-offset, v.Bit)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}

	for i, v := range vars {
		v.Value = vals[i]
		c.observeValue(v)
	}

	return vars, nil
}

// ReadBatch reads many independently addressed variables across areas in one
// round trip.
//
// Every variable becomes one addressed item; results are demultiplexed back onto
// the variables positionally. The call is all-or-nothing: when one or more items
// report a non-zero result code the whole call fails with *s7.BatchError listing
// every failing code, and no values are returned.
//
// An empty variable list returns an empty result without any transport call.
func (c *Client) ReadBatch(vars []*s7.Variable) ([]*s7.Variable, error) {
	if len(vars) == 0 {
		return []*s7.Variable{}, nil
	}

	items, err := s7.BatchItems(vars)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Data = make([]byte, vars[i].Type.Size())
	}

	if !c.stateMgr.IsConnected() {
		return nil, s7.ErrNotConnected
	}

	c.logger.Debug("batch read", "method", "ReadBatch", "items", len(items))

	c.opMutex.Lock()
	err = c.transport.ReadBatch(items)
	c.opMutex.Unlock()

	c.metrics.incBatchReadCount()
	if err != nil {
		c.metrics.incTransportErrCount()
		return nil, asTransportError(err)
	}

	if batchErr := c.collectItemErrors(items); batchErr != nil {
		c.metrics.incBatchErrCount()
		return nil, batchErr
	}

	vals := make([]any, len(vars))
	for i, v := range vars {
		// batch items carry the value alone: a bool item is one byte holding
		// the addressed bit at position 0
		val, err := s7.Decode(v.Type, items[i].Data, 0, 0)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}

	for i, v := range vars {
		v.Value = vals[i]
		c.observeValue(v)
	}

	return vars, nil
}

// WriteBatch writes many independently addressed variables across areas in one
// round trip.
//
// Each variable's Value is encoded with the fixed big-endian codec of its type.
// A bool value is written as a full byte of 0x00/0x01 at its bit-granular
// address; sibling bits of the addressed byte are not read back and merged
// first. The call is all-or-nothing, like ReadBatch.
func (c *Client) WriteBatch(vars []*s7.Variable) ([]*s7.Variable, error) {
	if len(vars) == 0 {
		return []*s7.Variable{}, nil
	}

	items, err := s7.BatchItems(vars)
	if err != nil {
		return nil, err
	}
	for i, v := range vars {
		data, err := s7.Encode(v.Type, v.Value)
		if err != nil {
			return nil, err
		}
		items[i].Data = data
	}

	if !c.stateMgr.IsConnected() {
		return nil, s7.ErrNotConnected
	}

	c.logger.Debug("batch write", "method", "WriteBatch", "items", len(items))

	c.opMutex.Lock()
	err = c.transport.WriteBatch(items)
	c.opMutex.Unlock()

	c.metrics.incBatchWriteCount()
	if err != nil {
		c.metrics.incTransportErrCount()
		return nil, asTransportError(err)
	}

	if batchErr := c.collectItemErrors(items); batchErr != nil {
		c.metrics.incBatchErrCount()
		return nil, batchErr
	}

	for _, v := range vars {
		c.observeValue(v)
	}

	return vars, nil
}

// ReadOne reads a single variable. It delegates to ReadBatch with a one-element
// list and unwraps the result.
func (c *Client) ReadOne(v *s7.Variable) (*s7.Variable, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	results, err := c.ReadBatch([]*s7.Variable{v})
	if err != nil {
		return nil, err
	}

	return results[0], nil
}

// WriteOne writes a single variable. It delegates to WriteBatch with a
// one-element list and unwraps the result.
func (c *Client) WriteOne(v *s7.Variable) (*s7.Variable, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	results, err := c.WriteBatch([]*s7.Variable{v})
	if err != nil {
		return nil, err
	}

	return results[0], nil
}

// ReadNamed reads a variable registered in the client's variable table.
func (c *Client) ReadNamed(name string) (*s7.Variable, error) {
	v, err := c.Variable(name)
	if err != nil {
		return nil, err
	}

	return c.ReadOne(v)
}

// WriteNamed writes a value to a variable registered in the client's variable
// table.
func (c *Client) WriteNamed(name string, value any) (*s7.Variable, error) {
	v, err := c.Variable(name)
	if err != nil {
		return nil, err
	}
	v.Value = value

	return c.WriteOne(v)
}

// validateRangeVar checks a variable for use in a contiguous range read of the
// given data block. The descriptor's own data block number may be left zero in
// range mode because the call supplies it; when set, it must match.
func (c *Client) validateRangeVar(dbNumber int, v *s7.Variable) error {
	if v == nil {
		return fmt.Errorf("%w: nil variable", s7.ErrInvalidVariable)
	}
	if v.Area != s7.AreaDataBlock {
		return fmt.Errorf("%w: range read requires data-block variables, got %s", s7.ErrInvalidVariable, v.Area)
	}
	if v.DBNumber != 0 && v.DBNumber != dbNumber {
		return fmt.Errorf("%w: variable addresses DB%d, range reads DB%d", s7.ErrInvalidVariable, v.DBNumber, dbNumber)
	}

	checked := *v
	checked.DBNumber = dbNumber

	return checked.Validate()
}

// collectItemErrors builds a BatchError from the per-item result fields, or
// returns nil when every item succeeded.
func (c *Client) collectItemErrors(items []s7.BatchItem) error {
	var codes []int
	var texts []string
	for i := range items {
		if !items[i].Failed() {
			continue
		}

		codes = append(codes, items[i].Code)
		text := items[i].Err
		if text == "" {
			text = c.transport.ErrorText(items[i].Code)
		}
		texts = append(texts, text)
	}

	if len(codes) == 0 {
		return nil
	}

	return &s7.BatchError{Codes: codes, Texts: texts}
}

// observeValue emits a value-observed notification for one successfully read or
// written variable. The variable is cloned so subscribers never race the caller.
func (c *Client) observeValue(v *s7.Variable) {
	clone := *v
	c.hub.Publish(s7.Event{Kind: s7.EventValueObserved, Variable: &clone})
}

// asTransportError wraps a transport failure, preserving an already-typed error.
func asTransportError(err error) error {
	var tErr *s7.TransportError
	if errors.As(err, &tErr) {
		return err
	}

	return &s7.TransportError{Err: err}
}
