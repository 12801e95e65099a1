// Package eureka is a read/control client for a Netflix Eureka service
// registry and the Spring Boot actuators of the instances it lists.
//
// The registry is queried over its REST API (/eureka/apps, JSON).
// Actuator commands (pause, shutdown, log level) go directly to the
// instance, at an endpoint derived from its registered home page URL.
package eureka
