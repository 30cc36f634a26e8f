// Package bot is the chat front-end: it reads incoming messages, routes them
// to the greeting or download handlers, replies with the produced audio file
// and translates failures into localized text replies.
//
// The Telegram transport sits behind the Messenger interface so handlers can
// be exercised without the network.
package bot
