/*
Package ports defines the driven ports (interfaces) for carepath.

These interfaces decouple the pathway registry from where pathway documents live,
so the same compiler and traversal engine can serve documents embedded in the
binary, read from a directory, held in memory or cached in Redis.

# Key Interfaces

  - Source: fetches raw pathway documents by id and lists what is available.
  - Catalog: optionally describes the pathways a source offers (title, age range, tags).
  - Invalidator: implemented by caching sources that can drop documents on reload.
*/
package ports
