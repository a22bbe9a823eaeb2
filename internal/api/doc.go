// Package api provides the Idle Clans player-market REST client.
//
// REST endpoints:
//   - Production: https://query.idleclans.com/api
//
// Key endpoints: /PlayerMarket/items/prices/latest
package api
