/*
Package ports defines the driven ports (interfaces) of a mango deployment.

These interfaces decouple editing sessions from where their documents live,
so the same session manager works against memory, the filesystem or redis.

# Key Interfaces

  - DocumentStore: persists encoded graph documents by name.
  - DistributedLocker: serialises access to one document across replicas.
*/
package ports
