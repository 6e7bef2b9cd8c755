// Package factories turns raw input into domain entries.
//
// TypeFactory builds entries from typed definitions ({type, data}) using
// builders registered per type tag. URLFactory runs URLs through an ordered
// chain of URL processors, feeding rewritten URLs back into the chain until
// a processor claims them.
package factories
