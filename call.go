package patch

import (
	"fmt"
)

// Get returns the value of output. Cached value is returned if output is
// caching and none of its inputs changed since last evaluation.
func (o Output) Get() (interface{}, error) {
	c, err := o.lookup()
	if err != nil {
		return nil, err
	}
	return o.g.evaluate(c)
}

// Value returns the value of output as T. ErrTypeMismatch is returned if
// the value is not assignable to T.
func Value[T any](o Output) (T, error) {
	var zero T
	v, err := o.Get()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: %T is not %v", o.Name(), ErrTypeMismatch, v, TypeOf[T]())
	}
	return t, nil
}

// Set passes value to input method and updates observers.
func (in Input) Set(v interface{}) error {
	c, err := in.lookup()
	if err != nil {
		return err
	}
	if !c.accepts(v) {
		return typeMismatch(c, v)
	}
	return in.g.call(c, func() error {
		return c.set(v)
	})
}

// Fire calls trigger method and updates observers.
func (t Trigger) Fire() error {
	c, err := t.lookup()
	if err != nil {
		return err
	}
	return t.g.call(c, c.fire)
}

// Add passes value to multi input and returns its id.
func (m MultiInput) Add(v interface{}) (int, error) {
	c, err := m.lookup()
	if err != nil {
		return 0, err
	}
	if !c.accepts(v) {
		return 0, typeMismatch(c, v)
	}
	var id int
	err = m.g.call(c, func() error {
		var err error
		id, err = c.add(v)
		return err
	})
	return id, err
}

// Remove removes value with id from multi input.
func (m MultiInput) Remove(id int) error {
	c, err := m.lookup()
	if err != nil {
		return err
	}
	return m.g.call(c, func() error {
		if err := c.remove(id); err != nil {
			return err
		}
		for from, v := range c.ids {
			if v == id {
				delete(c.ids, from)
			}
		}
		return nil
	})
}

// Replace replaces value with id. ErrInvalidConnection is returned if
// multi input has no replace method.
func (m MultiInput) Replace(id int, v interface{}) error {
	c, err := m.lookup()
	if err != nil {
		return err
	}
	if c.replace == nil {
		return fmt.Errorf("%s has no replace method: %w", c.name, ErrInvalidConnection)
	}
	if !c.accepts(v) {
		return typeMismatch(c, v)
	}
	return m.g.call(c, func() error {
		return c.replace(id, v)
	})
}

func typeMismatch(c *connector, v interface{}) error {
	return fmt.Errorf("%s: %w: %T is not accepted", c.name, ErrTypeMismatch, v)
}
