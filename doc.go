// Package auth is the access core of L'École des Génies: it decides who a
// request claims to be, whether that identity may see a given pedagogical
// sheet, and how a forgotten credential is safely replaced.
//
// Identity and sessions:
//   - Accounts live in a UserStore supplied by the host application; the
//     CredentialStore owns every mutation of identity records and never
//     stores or logs a plaintext password.
//   - Sessions are self contained HS256 bearer tokens. Nothing is persisted
//     server side, so a token stays valid for its whole stated lifetime;
//     privileged checks re-read the account record instead of trusting
//     token claims.
//
// Catalogue visibility:
//   - ResolveSheetFilter turns {role, premium, verified} into a SheetFilter
//     predicate. The predicate both matches in-memory records and applies
//     itself to bun queries, so tier logic is never duplicated ad hoc.
//
// Password recovery:
//   - The initialize/finalize command pair implements the request, deliver,
//     redeem flow over an injected Mailer. Reset tokens carry a dedicated
//     purpose claim and a one hour expiry; they are not tracked server side.
//   - AdminPasswordResetHandler is the privileged bypass; it gates on
//     RequireAdmin and emits an ActivityEvent (actor, target, timestamp) for
//     external auditing.
package auth
