// Package output renders server replies for rosso-cli.
//
//   - formatter.go: redis-cli style (human) and raw rendering
//   - json.go: JSON rendering for scripting
package output
