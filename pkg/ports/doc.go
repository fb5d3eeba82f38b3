/*
Package ports defines the driven and driving ports (interfaces) of the Hearts Quest engine.

These interfaces decouple the flow controller from storage backends, timers,
and the surfaces (HTTP, MCP, terminal) that drive it.

# Key Interfaces

  - Flow: one live session of the quest; the inbound intent API and the outbound observable.
  - StateStore: persists and loads session Progress snapshots.
  - DistributedLocker: provides distributed locking for concurrent session access.
  - Clock: schedules the step-scoped timers of the controller.
*/
package ports
