// Package model defines domain data structures shared across the bot: download
// requests, provider tags, request statuses and the error taxonomy used to
// translate failures into user replies.
package model
