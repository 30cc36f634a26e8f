// Package yandexmusic is a minimal client for the Yandex Music API: token
// check, track lookup and download of a track's audio through the signed
// direct link the storage service hands out.
package yandexmusic
