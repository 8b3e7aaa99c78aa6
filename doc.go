// Package notes provides a per-owner note-taking backend with pluggable
// storage and AWS Signature V4 identity.
//
// Every caller owns a private collection of notes addressed by
// (OwnerID, ItemID). The service validates input and issues exactly one
// storage command per operation.
//
// # Key Components
//
//   - NoteService: create, get, list, update and delete operations
//   - Store: interface for note persistence (SQLite, PostgreSQL, DynamoDB)
//   - SignatureVerifier: AWS Signature V4 verification resolving the owner id
//   - Error: failures tagged with a Kind (authentication, validation,
//     not found, storage)
//
// # Update Semantics
//
// Update overwrites both content and attachment. A field that is absent or
// empty in the request is stored as null, and updating a note that does not
// exist succeeds without creating it.
//
// # Example Usage
//
//	service, err := notes.NewNoteService(store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	note, err := service.Create(ctx, "alice", notes.CreateNoteRequest{Content: "hello"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = service.Update(ctx, "alice", note.ItemID, notes.UpdateNoteRequest{
//	    Content: notes.String("bye"),
//	})
package notes
