package prompttune

// The templates below become the tuned prompt files. Placeholders written as
// {entity_types}, {examples}, {language}, {persona}, {role} and
// {report_rating_description} are filled during assembly; {input_text},
// {entity_name}, {description_list} and the delimiter placeholders are left
// in place for the indexing pipeline to fill at run time.

// GraphExtractionTemplate is the entity extraction prompt used when entity
// types were generated for the corpus.
const GraphExtractionTemplate = `-Goal-
Given a text document that is potentially relevant to this activity and a list of entity types, identify all entities of those types from the text and all relationships among the identified entities.

-Steps-
1. Identify all entities. For each identified entity, extract the following information:
- entity_name: Name of the entity, capitalized
- entity_type: One of the following types: [{entity_types}]
- entity_description: Comprehensive description of the entity's attributes and activities
Format each entity as ("entity"{tuple_delimiter}<entity_name>{tuple_delimiter}<entity_type>{tuple_delimiter}<entity_description>)

2. From the entities identified in step 1, identify all pairs of (source_entity, target_entity) that are *clearly related* to each other.
For each pair of related entities, extract the following information:
- source_entity: name of the source entity, as identified in step 1
- target_entity: name of the target entity, as identified in step 1
- relationship_description: explanation as to why you think the source entity and the target entity are related to each other
- relationship_strength: an integer score between 1 to 10, indicating strength of the relationship between the source entity and target entity
Format each relationship as ("relationship"{tuple_delimiter}<source_entity>{tuple_delimiter}<target_entity>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)

3. Return output in {language} as a single list of all the entities and relationships identified in steps 1 and 2. Use **{record_delimiter}** as the list delimiter.

4. When finished, output {completion_delimiter}

######################
-Examples-
######################
{examples}

######################
-Real Data-
######################
entity_types: [{entity_types}]
text: {input_text}
######################
output:`

// UntypedGraphExtractionTemplate is the entity extraction prompt used when
// entity type generation was skipped; the model labels entities itself.
const UntypedGraphExtractionTemplate = `-Goal-
Given a text document that is potentially relevant to this activity, first identify all entities needed from the text in order to capture the information and ideas in the text.
Next, report all relationships among the identified entities.

-Steps-
1. Identify all entities. For each identified entity, extract the following information:
- entity_name: Name of the entity, capitalized
- entity_type: Suggest several labels or categories for the entity. The categories should not be specific, but should be as general as possible.
- entity_description: Comprehensive description of the entity's attributes and activities
Format each entity as ("entity"{tuple_delimiter}<entity_name>{tuple_delimiter}<entity_type>{tuple_delimiter}<entity_description>)

2. From the entities identified in step 1, identify all pairs of (source_entity, target_entity) that are *clearly related* to each other.
For each pair of related entities, extract the following information:
- source_entity: name of the source entity, as identified in step 1
- target_entity: name of the target entity, as identified in step 1
- relationship_description: explanation as to why you think the source entity and the target entity are related to each other
- relationship_strength: a numeric score indicating strength of the relationship between the source entity and target entity
Format each relationship as ("relationship"{tuple_delimiter}<source_entity>{tuple_delimiter}<target_entity>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)

3. Return output in {language} as a single list of all the entities and relationships identified in steps 1 and 2. Use **{record_delimiter}** as the list delimiter.

4. When finished, output {completion_delimiter}

######################
-Examples-
######################
{examples}

######################
-Real Data-
######################
text: {input_text}
######################
output:`

// ExampleExtractionTemplate renders one worked example inside the typed
// extraction prompt.
const ExampleExtractionTemplate = `
Example {n}:

entity_types: [{entity_types}]
text:
{input_text}
------------------------
output:
{output}
#############################

`

// UntypedExampleExtractionTemplate renders one worked example inside the
// untyped extraction prompt.
const UntypedExampleExtractionTemplate = `
Example {n}:

text:
{input_text}
------------------------
output:
{output}
#############################

`

// EntitySummarizationTemplate is the prompt used to merge the collected
// descriptions of an entity into a single one.
const EntitySummarizationTemplate = `{persona}
Using your expertise, you're asked to generate a comprehensive summary of the data provided below.
Given one or two entities, and a list of descriptions, all related to the same entity or group of entities.
Please concatenate all of these into a single, concise description in {language}. Make sure to include information collected from all the descriptions.
If the provided descriptions are contradictory, please resolve the contradictions and provide a single, coherent summary.
Make sure it is written in third person, and include the entity names so we have the full context.

Enrich it as much as you can with relevant information from the nearby text, this is very important.

If no answer is possible, or the description is empty, only convey information that is provided within the text.
#######
-Data-
Entities: {entity_name}
Description List: {description_list}
#######
Output:`

// CommunityReportTemplate is the prompt used to write a community report from
// the entities, relationships and claims of one community.
const CommunityReportTemplate = `{persona}

# Goal
Write a comprehensive assessment report of a community taking on the role of a {role}.

# Report Structure
The report should include the following sections:
- TITLE: community's name that represents its key entities - title should be short but specific. When possible, include representative named entities in the title.
- SUMMARY: An executive summary of the community's overall structure, how its entities are related to each other, and significant points associated with its entities.
- REPORT RATING: {report_rating_description}
- RATING EXPLANATION: Give a single sentence explanation of the rating.
- DETAILED FINDINGS: A list of 5-10 key insights about the community. Each insight should have a short summary followed by multiple paragraphs of explanatory text grounded according to the grounding rules below. Be comprehensive.

Return output as a well-formed JSON-formatted string with the following format. Don't use any unnecessary escape sequences. The output should be a single JSON object that can be parsed by json.loads.
    {
        "title": <report_title>,
        "summary": <executive_summary>,
        "rating": <threat_severity_rating>,
        "rating_explanation": <rating_explanation>,
        "findings": [{"summary": <insight_1_summary>, "explanation": <insight_1_explanation>}, {"summary": <insight_2_summary>, "explanation": <insight_2_explanation>}]
    }

# Grounding Rules
After each paragraph, add data record reference if the content of the paragraph was derived from one or more data records. Reference is in the format of [records: <record_source> (<record_id_list>, ...<record_source> (<record_id_list>)]. If this is based on multiple data records, list all relevant records.
For example: "Person X is the owner of Company Y and subject to many allegations of wrongdoing [records: Entities (1), Relationships (23, 7, 2, 34, 64, 46), Claims (2)]."
Do not list more than 10 record ids in a single reference. Instead, list the top 10 most relevant record ids and add "+more" to indicate that there are more.

Return output in {language} as a well-formed JSON-formatted string.

Text: {input_text}
Output:`
