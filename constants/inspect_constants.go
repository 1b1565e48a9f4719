package constants

// DAP命令，本客户端只会走一条固定的调试路径
const (
	CommandInitialize        = "initialize"
	CommandAttach            = "attach"
	CommandConfigurationDone = "configurationDone"
	CommandThreads           = "threads"
	CommandPause             = "pause"
	CommandStackTrace        = "stackTrace"
	CommandScopes            = "scopes"
	CommandVariables         = "variables"
)

// DAP事件名称
const (
	EventInitialized = "initialized"
	EventStopped     = "stopped"
	EventContinued   = "continued"
	EventOutput      = "output"
	EventTerminated  = "terminated"
)

// ScopeName 作用域名称
type ScopeName string

// Locals: 当前栈帧中的局部变量和参数。
// Globals: 整个程序的全局变量。
// 作用域名称由调试器上报，匹配时忽略大小写。
const (
	ScopeLocals  ScopeName = "locals"
	ScopeGlobals ScopeName = "globals"
)

// CycleMarker 展开变量树时检测到环，用该名称的哨兵节点代替子树
const CycleMarker = "<cycle>"

// DefaultStackTraceLevels stackTrace请求获取的最大栈帧数量
const DefaultStackTraceLevels = 20

// DefaultDepthLimit 变量树默认的展开深度
const DefaultDepthLimit = 3
