package luasrc

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/yndnr/myke/internal/core/domain"
)

// ErrRuntimeClosed is returned when using a closed Runtime.
var ErrRuntimeClosed = errors.New("lua runtime is closed")

const errorTypeName = "myke.error"

// Error is a failure raised by Lua code itself, such as error("...") or
// a runtime type error.
type Error struct {
	Message   string
	Traceback string
}

func (e *Error) Error() string {
	return e.Message
}

// errorValue wraps err in userdata so that it keeps its Go identity when
// it travels through Lua frames and back out of a protected call.
func errorValue(L *lua.LState, err error) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(errorTypeName))
	return ud
}

// raise aborts the running Go function with err as the Lua error value.
func raise(L *lua.LState, err error) int {
	L.Error(errorValue(L, err), 1)
	return 0
}

func registerErrorType(L *lua.LState) {
	mt := L.NewTypeMetatable(errorTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if err, ok := ud.Value.(error); ok {
			L.Push(lua.LString(err.Error()))
		} else {
			L.Push(lua.LString(errorTypeName))
		}
		return 1
	}))
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		err, _ := ud.Value.(error)
		switch L.CheckString(2) {
		case "message":
			L.Push(lua.LString(err.Error()))
		case "code":
			L.Push(lua.LString(domain.GetErrorCode(err)))
		case "exit_code":
			L.Push(lua.LNumber(domain.ExitCode(err)))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
}

// unwrapError recovers the Go error carried by a Lua error, or converts
// a Lua-level failure into *Error.
func unwrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	if ud, ok := apiErr.Object.(*lua.LUserData); ok {
		if goErr, ok := ud.Value.(error); ok {
			return goErr
		}
	}
	if apiErr.Cause != nil {
		return apiErr.Cause
	}
	msg := err.Error()
	if apiErr.Object != nil && apiErr.Object != lua.LNil {
		msg = apiErr.Object.String()
	}
	return &Error{
		Message:   strings.TrimSpace(msg),
		Traceback: apiErr.StackTrace,
	}
}
