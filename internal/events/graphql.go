package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	// OperationID pairs the start with its finish. One HTTP request or
	// websocket connection may run several operations.
	OperationID   string
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing a GraphQL operation.
type GraphQLFinish struct {
	OperationID   string
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
