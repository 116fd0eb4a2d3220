package vm

import (
	"github.com/matthew-healy/uplp/internal/bytecode"
	"github.com/matthew-healy/uplp/internal/env"
	"github.com/matthew-healy/uplp/internal/value"
)

func (m *VM) pushVal(v value.Val) {
	m.stack = append(m.stack, marker{kind: markVal, val: v})
}

func (m *VM) pushCode(c bytecode.Code) {
	m.stack = append(m.stack, marker{kind: markCode, code: c})
}

func (m *VM) pushEnv(e *env.Env[value.Val]) {
	m.stack = append(m.stack, marker{kind: markEnv, env: e})
}

func (m *VM) pushAppDelim() {
	m.stack = append(m.stack, marker{kind: markAppDelim})
}

// peek returns the top marker without removing it.
func (m *VM) peek() (marker, bool) {
	if len(m.stack) == 0 {
		return marker{}, false
	}
	return m.stack[len(m.stack)-1], true
}

func (m *VM) pop() (marker, bool) {
	if len(m.stack) == 0 {
		return marker{}, false
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return top, true
}

func (m *VM) forcePopVal() (value.Val, error) {
	top, ok := m.pop()
	if !ok {
		return nil, internalf("attempt to pop a value from an empty stack")
	}
	if top.kind != markVal {
		return nil, internalf("expected a value on the stack but found something else")
	}
	return top.val, nil
}

func (m *VM) forcePopCode() (bytecode.Code, error) {
	top, ok := m.pop()
	if !ok {
		return nil, internalf("attempt to pop a saved code continuation from an empty stack")
	}
	if top.kind != markCode {
		return nil, internalf("expected a saved code continuation but found something else")
	}
	return top.code, nil
}

func (m *VM) forcePopEnv() (*env.Env[value.Val], error) {
	top, ok := m.pop()
	if !ok {
		return nil, internalf("attempt to pop a saved environment from an empty stack")
	}
	if top.kind != markEnv {
		return nil, internalf("expected a saved environment but found something else")
	}
	return top.env, nil
}

func (m *VM) forcePopAppDelim() error {
	top, ok := m.pop()
	if !ok {
		return internalf("attempt to pop a call delimiter from an empty stack")
	}
	if top.kind != markAppDelim {
		return internalf("expected a call delimiter but found something else")
	}
	return nil
}
