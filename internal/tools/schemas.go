package tools

// Tool input schemas, validated on every call before any side effect.

const searchProductsSchema = `{
  "type": "object",
  "properties": {
    "keywords": {
      "type": "string",
      "minLength": 1,
      "description": "Product search terms (e.g. \"nike running shoes\", \"creatine\", \"wireless headphones\")"
    },
    "agent_id": {
      "type": "string",
      "description": "Your agent ID for earning cashback commissions"
    },
    "max_results": {
      "type": "integer",
      "minimum": 1,
      "maximum": 20,
      "description": "Max results (1-20)"
    }
  },
  "required": ["keywords"],
  "additionalProperties": false
}`

const searchByIntentSchema = `{
  "type": "object",
  "properties": {
    "intent": {
      "type": "string",
      "minLength": 1,
      "description": "Natural language request (e.g. \"Find creatine monohydrate under $30, highest cashback\")"
    },
    "agent_id": {
      "type": "string",
      "description": "Your agent ID"
    },
    "preferences": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Boost preferences (e.g. [\"unflavored\", \"bulk\"])"
    }
  },
  "required": ["intent"],
  "additionalProperties": false
}`

const registerAgentSchema = `{
  "type": "object",
  "properties": {
    "agent_id": {
      "type": "string",
      "minLength": 1,
      "description": "Unique agent identifier"
    },
    "wallet_address": {
      "type": "string",
      "minLength": 1,
      "description": "EVM wallet that receives commissions"
    },
    "agent_name": {
      "type": "string",
      "description": "Display name"
    },
    "crypto_preference": {
      "type": "string",
      "enum": ["MON", "BONK", "USDC"],
      "description": "Reward token"
    }
  },
  "required": ["agent_id", "wallet_address"],
  "additionalProperties": false
}`

const agentStatsSchema = `{
  "type": "object",
  "properties": {
    "agent_id": {
      "type": "string",
      "minLength": 1,
      "description": "Agent ID to look up"
    }
  },
  "required": ["agent_id"],
  "additionalProperties": false
}`

const compareCashbackSchema = `{
  "type": "object",
  "properties": {
    "product_query": {
      "type": "string",
      "minLength": 1,
      "description": "Product to compare (e.g. \"nike air force 1\")"
    },
    "agent_id": {
      "type": "string",
      "description": "Your agent ID"
    }
  },
  "required": ["product_query"],
  "additionalProperties": false
}`
