// Package protocol implements the textual wire protocol through which the
// record store is reached over a TCP socket, plus a matching client.
//
// # Requests
//
// A request is one newline-terminated line of the form VERB/resource/params
// with ':'-separated params:
//
//	GET/credential/<user>                    exists?           -> bool
//	GET/credential/<user>:<password>         verify            -> bool
//	GET/posts/profile/<user>:<limit>         profile posts     -> records
//	GET/posts/timeline/<user>:<limit>        timeline posts    -> records
//	GET/relations/<user>:<friend>            is following?     -> bool
//	GET/relations/followers/<user>:<limit>   followers         -> records
//	GET/relations/friends/<user>:<limit>     friends           -> records
//	SAVE/credential/<user>:<password>        register          -> status
//	SAVE/posts/<user>:<text>                 post now          -> status
//	SAVE/posts/<user>:<text>:<timestamp>     post at time      -> status
//	SAVE/relations/<user>:<friend>           follow            -> status
//	DELETE/credential/<user>:<password>      deactivate        -> status
//	DELETE/posts/<user>:<timestamp>          delete post       -> status
//	DELETE/relations/<user>:<friend>         unfollow          -> status
//
// Usernames and passwords are lowercase letters on the wire; limits are
// decimal with non-positive meaning unbounded; timestamps are ten digits.
// Anything that matches no pattern answers the error marker.
//
// # Responses
//
// A response is a single line holding either a status marker ("success" /
// "error"), a boolean literal ("true" / "false"), or zero or more
// fixed-width records concatenated with no separators. Records carry no
// newlines by construction, so line framing is safe; the caller splits the
// payload by the record kind's slot size, which it knows from its own
// configuration.
package protocol
