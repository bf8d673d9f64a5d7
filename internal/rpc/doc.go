// Package rpc is the wire contract between the gateway and the auth
// service: command names, payload shapes, the reply envelope and the JSON
// codec registered with gRPC.
//
// Every command is a unary gRPC method on ServiceName whose method name is
// the command name. Requests and replies travel as JSON; a reply always
// carries exactly one of data or error.
package rpc
