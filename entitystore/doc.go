// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package entitystore exposes the package/ecosystem/tag catalog to the
curation engine.

The engine touches the catalog in exactly two places:

  - At suggestion creation, to verify referenced entities exist
    (EcosystemExists, PackageExists, TagExists) and proposed names are
    free (EcosystemNameTaken, TagNameTaken).
  - At resolution, to apply the approved change (AttachTag,
    AddPackageToEcosystem, CreateEcosystem, CreateTag).

# Idempotency

Every mutation is an ON CONFLICT DO NOTHING insert. The resolver may retry
a mutation after a crash between the status transition and the catalog
write; replays must land as no-ops. Created entities reuse the suggestion
id as their row id, so a retried create targets the same primary key.

# Testing

Store is an interface; resolver tests substitute a fake that counts apply
calls to prove exactly-once behavior.
*/
package entitystore
