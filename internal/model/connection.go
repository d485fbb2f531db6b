package model

import "time"

// ConnectionState is the state shown by the connection indicator.
type ConnectionState string

const (
	ConnectionStateLoading ConnectionState = "loading"
	ConnectionStateOnline  ConnectionState = "online"
	ConnectionStateOffline ConnectionState = "offline"
)

// ConnectionStatus is the connection indicator content.
type ConnectionStatus struct {
	State     ConnectionState
	Text      string
	CheckedAt time.Time
}
