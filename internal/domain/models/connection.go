package models

type ConnectionState string

const (
	StateDisconnected        ConnectionState = "disconnected"
	StateConnecting          ConnectionState = "connecting"
	StateOpen                ConnectionState = "open"
	StateClosedIntentionally ConnectionState = "closed_intentionally"
	StateReconnectPending    ConnectionState = "reconnect_pending"
)

// CloseNormal зарезервирован за намеренным закрытием: после него переподключения нет.
const CloseNormal = 1000

const CloseAbnormal = 1006
