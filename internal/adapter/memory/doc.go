// Package memory provides single-process implementations of the item,
// account and login-throttle stores. They back STORE_BACKEND=memory and the
// unit tests of the layers above.
package memory
