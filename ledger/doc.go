// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger stores one vote per identity.

	votes := ledger.New(conn, dialect)
	rec, err := votes.Record(ctx, identity, ballot, origin)

Record is a single INSERT. The UNIQUE constraint on identity decides
concurrent submissions; the loser gets ErrDuplicateIdentity.
*/
package ledger
