// Package table implements the table service query client.
//
// The table service is a managed Postgres reached only through its HTTP
// gateway (PostgREST): the dashboard authenticates with the public anon key
// and reads one top-N snapshot per request. Change notifications for the
// same table are handled separately by package realtime.
package table
