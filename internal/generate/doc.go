// Package generate produces notification content from event input via
// the AWS Bedrock agent runtime (agent invocation or knowledge-base
// retrieve-and-generate).
package generate
