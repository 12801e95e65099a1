// Package control defines the control-plane capability: named controllers
// that handle action (POST) and optionally read (GET) requests under
// /api/v1/{controller}/.
//
// A controller implements Controller; read support is declared by also
// implementing GetHandler. The dispatcher distinguishes "controller does
// not exist" (not found) from "controller exists but does not read"
// (not implemented) via the interface assertion.
package control
