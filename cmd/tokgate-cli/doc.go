// Command tokgate-cli is a command-line client for tokgate-server.
//
//	tokgate-cli sign-in -u admin666 -p admin666
//	tokgate-cli --token "$TOKEN" check-login
package main
