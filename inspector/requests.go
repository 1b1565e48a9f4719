package inspector

import (
	"encoding/json"

	"github.com/google/go-dap"

	"github.com/fansqz/dap-inspector/constants"
)

// newRequest 构造请求的基础部分，序列号由Session在发送时填充
func newRequest(command string) dap.Request {
	return dap.Request{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "request",
		},
		Command: command,
	}
}

func newInitializeRequest(adapterID string) *dap.InitializeRequest {
	return &dap.InitializeRequest{
		Request: newRequest(constants.CommandInitialize),
		Arguments: dap.InitializeRequestArguments{
			ClientID:                     "dap-inspector",
			ClientName:                   "DAP Inspector",
			AdapterID:                    adapterID,
			PathFormat:                   "path",
			LinesStartAt1:                true,
			ColumnsStartAt1:              true,
			SupportsVariableType:         true,
			SupportsVariablePaging:       true,
			SupportsRunInTerminalRequest: false,
		},
	}
}

// attachArguments attach请求的参数是调试器自定义的，这里只声明不调试子进程
type attachArguments struct {
	SubProcess bool `json:"subProcess"`
}

func newAttachRequest() *dap.AttachRequest {
	arguments, _ := json.Marshal(attachArguments{SubProcess: false})
	return &dap.AttachRequest{
		Request:   newRequest(constants.CommandAttach),
		Arguments: arguments,
	}
}

func newConfigurationDoneRequest() *dap.ConfigurationDoneRequest {
	return &dap.ConfigurationDoneRequest{
		Request: newRequest(constants.CommandConfigurationDone),
	}
}

func newThreadsRequest() *dap.ThreadsRequest {
	return &dap.ThreadsRequest{
		Request: newRequest(constants.CommandThreads),
	}
}

func newPauseRequest(threadID int) *dap.PauseRequest {
	return &dap.PauseRequest{
		Request: newRequest(constants.CommandPause),
		Arguments: dap.PauseArguments{
			ThreadId: threadID,
		},
	}
}

func newStackTraceRequest(threadID int) *dap.StackTraceRequest {
	return &dap.StackTraceRequest{
		Request: newRequest(constants.CommandStackTrace),
		Arguments: dap.StackTraceArguments{
			ThreadId:   threadID,
			StartFrame: 0,
			Levels:     constants.DefaultStackTraceLevels,
		},
	}
}

func newScopesRequest(frameID int) *dap.ScopesRequest {
	return &dap.ScopesRequest{
		Request: newRequest(constants.CommandScopes),
		Arguments: dap.ScopesArguments{
			FrameId: frameID,
		},
	}
}

func newVariablesRequest(reference int) *dap.VariablesRequest {
	return &dap.VariablesRequest{
		Request: newRequest(constants.CommandVariables),
		Arguments: dap.VariablesArguments{
			VariablesReference: reference,
		},
	}
}
