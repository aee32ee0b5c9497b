/*
Package ports defines the driven and driving ports (interfaces) of thicket.

These interfaces decouple the selection core from external implementations,
allowing it to work with various tree sources, storage backends and front ends.

# Key Interfaces

  - TreeLoader: Responsible for loading tree definitions (e.g., from files, Loam or memory).
  - StateStore: Responsible for persisting and loading selection sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - SelectionService: The surface consumed by the HTTP and MCP adapters.

Implementations verify themselves with RunStateStoreContract and
RunTreeLoaderContract.
*/
package ports
